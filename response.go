package docdrive

import "time"

// Usage contains token usage counters as reported by the tool, when the
// tool reports any.
type Usage struct {
	// InputTokens is the prompt-side token count.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the number of tokens generated.
	OutputTokens int `json:"output_tokens"`
}

// ProviderMeta is diagnostic metadata attached to every response.
type ProviderMeta struct {
	// Provider is the owning provider identifier.
	Provider string `json:"provider"`

	// Latency is wall-clock time for the underlying process run.
	Latency time.Duration `json:"latency"`

	// Stdout and Stderr are the raw captured streams, retained for
	// diagnostics. The normalized analysis text lives in Response.Message.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// Response is the normalized outcome of one successful Send call.
type Response struct {
	// ID is a correlation identifier for logs and telemetry.
	ID string `json:"id"`

	// Message is the analysis result, always role=assistant.
	Message Message `json:"message"`

	// Usage is token accounting, nil when the tool reported none.
	Usage *Usage `json:"usage,omitempty"`

	// Meta carries provider identity, latency, and raw streams.
	Meta ProviderMeta `json:"meta"`
}
