package docdrive

import (
	"errors"
	"strings"
)

// Role tags a message with its conversational origin.
type Role string

const (
	// RoleSystem is prior system-prompt text folded into the conversation.
	RoleSystem Role = "system"

	// RoleUser is caller-supplied content, typically the document under analysis.
	RoleUser Role = "user"

	// RoleAssistant is text produced by an earlier provider response.
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a request's ordered conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ExecOptions carries advisory execution preferences. Tools map what they
// support and silently ignore the rest — none of these are guaranteed to be
// honored by any given CLI.
type ExecOptions struct {
	// Temperature is the sampling temperature, nil when unset.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the response length. Zero means tool default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stream requests incremental output where the tool supports it.
	Stream bool `json:"stream,omitempty"`
}

// Request describes one analysis invocation.
//
// Request is a value type — it carries content and configuration but no
// runtime state. A Request is created and discarded within one Send call.
type Request struct {
	// Messages is the ordered conversation. At least one user message
	// with non-empty content is required.
	Messages []Message `json:"messages"`

	// Instructions is the combined system-prompt text. Tools deliver it
	// via a dedicated flag or by prepending it to the payload; either way
	// the caller-observable behavior is identical.
	Instructions string `json:"instructions,omitempty"`

	// Options are advisory execution preferences.
	Options ExecOptions `json:"options,omitempty"`
}

// ErrEmptyRequest indicates a request with no usable user content.
var ErrEmptyRequest = errors.New("docdrive: request has no user content")

// Validate checks that the request carries at least one user message with
// non-blank content.
func (r Request) Validate() error {
	for _, m := range r.Messages {
		if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
			return nil
		}
	}
	return ErrEmptyRequest
}

// UserText returns the concatenation of all user message content, in order,
// separated by blank lines. This is the payload delivered to the tool's
// input stream.
func (r Request) UserText() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role == RoleUser && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
