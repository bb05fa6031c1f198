package docdrive

import "errors"

// Kind is a stable error-taxonomy classification. Kinds are the only failure
// vocabulary that crosses the provider boundary — callers branch on Kind,
// never on underlying error types.
type Kind string

const (
	// KindConfig is a malformed or unusable request or configuration.
	KindConfig Kind = "config"

	// KindAuth is a login/credential failure in the external tool.
	KindAuth Kind = "auth"

	// KindNotInstalled means the tool's executable could not be found.
	KindNotInstalled Kind = "not_installed"

	// KindRateLimit is a request-rate rejection (429 and friends).
	KindRateLimit Kind = "rate_limit"

	// KindQuotaExceeded is an exhausted billing or usage quota.
	KindQuotaExceeded Kind = "quota_exceeded"

	// KindContextLength means the input exceeded the model's window.
	KindContextLength Kind = "context_length"

	// KindNetwork is a connectivity failure inside the tool.
	KindNetwork Kind = "network"

	// KindTimeout means the wall-clock timeout expired.
	KindTimeout Kind = "timeout"

	// KindModelOverloaded means the upstream model rejected for load.
	KindModelOverloaded Kind = "model_overloaded"

	// KindProvider is an unrecognized tool failure.
	KindProvider Kind = "provider"

	// KindCancelled means the caller cancelled the run. Never auto-retried.
	KindCancelled Kind = "cancelled"

	// KindUnknown is a failure outside the taxonomy entirely.
	KindUnknown Kind = "unknown"
)

// Recoverable reports whether a caller-driven retry (possibly after user
// action such as logging in) can reasonably succeed for this kind.
func (k Kind) Recoverable() bool {
	switch k {
	case KindConfig, KindAuth, KindNotInstalled, KindRateLimit,
		KindQuotaExceeded, KindContextLength, KindNetwork,
		KindTimeout, KindModelOverloaded:
		return true
	}
	return false
}

// ErrorEntry is one classified provider failure. It is the single error type
// that crosses the facade boundary: every failure path — unavailable tool,
// malformed request, process failure — surfaces as an *ErrorEntry.
type ErrorEntry struct {
	// Kind is the taxonomy classification.
	Kind Kind `json:"kind"`

	// Provider is the owning provider identifier.
	Provider string `json:"provider"`

	// Message is the technical description, for logs.
	Message string `json:"message"`

	// Recoverable mirrors Kind.Recoverable at classification time.
	Recoverable bool `json:"recoverable"`

	// UserMessage is localized, user-presentable text.
	UserMessage string `json:"user_message"`

	// Suggestions are ordered recovery steps for the user.
	Suggestions []string `json:"suggestions,omitempty"`

	// ExitCode is the process exit status, 0 when not applicable.
	ExitCode int `json:"exit_code,omitempty"`

	// Detail is truncated raw stderr for diagnostics. Never shown to
	// end users, only logged.
	Detail string `json:"detail,omitempty"`

	// Cause is the wrapped underlying error, if any.
	Cause error `json:"-"`
}

func (e *ErrorEntry) Error() string {
	if e.Message != "" {
		return "docdrive: " + e.Provider + ": " + e.Message
	}
	return "docdrive: " + e.Provider + ": " + string(e.Kind)
}

func (e *ErrorEntry) Unwrap() error { return e.Cause }

// AsEntry extracts an *ErrorEntry from an error chain. Convenience wrapper
// around errors.As — equivalent to:
//
//	var entry *ErrorEntry
//	if errors.As(err, &entry) { return entry, true }
func AsEntry(err error) (*ErrorEntry, bool) {
	var entry *ErrorEntry
	if errors.As(err, &entry) {
		return entry, true
	}
	return nil, false
}
