// Package claude adapts the Claude Code CLI to the provider contract.
//
// Claude accepts a dedicated flag for system instructions
// (--append-system-prompt), so the instructions block travels as an argument
// while the document payload travels on stdin.
package claude

import (
	"regexp"
	"strings"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/classify"
	"github.com/specialmindsaarhus/docdrive/provider"
)

const (
	defaultBinary = "claude"
	id            = "claude"
	displayName   = "Claude Code"
)

// Tool is the Claude Code CLI provider.
type Tool struct {
	binary string
	model  string
}

// Compile-time interface satisfaction checks.
var (
	_ provider.Tool          = (*Tool)(nil)
	_ provider.ErrorParser   = (*Tool)(nil)
	_ provider.VersionProber = (*Tool)(nil)
	_ provider.Authenticator = (*Tool)(nil)
	_ provider.Installer     = (*Tool)(nil)
)

// Option configures a Tool at construction time.
type Option func(*Tool)

// WithBinary overrides the Claude CLI binary name.
// Empty values are ignored; the default is "claude".
func WithBinary(name string) Option {
	return func(t *Tool) {
		if name != "" {
			t.binary = name
		}
	}
}

// WithModel sets the --model flag for every invocation.
func WithModel(model string) Option {
	return func(t *Tool) { t.model = model }
}

// New creates a Claude Code provider with the given options.
func New(opts ...Option) *Tool {
	t := &Tool{binary: defaultBinary}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) ID() string          { return id }
func (t *Tool) DisplayName() string { return displayName }
func (t *Tool) Executable() string  { return t.binary }

// BuildCommand translates a request into a Claude invocation. Instructions
// ride on --append-system-prompt; the concatenated user content is the stdin
// payload. Null-byte-containing values are silently skipped (argv must never
// carry null bytes).
func (t *Tool) BuildCommand(req docdrive.Request) (docdrive.Command, error) {
	args := []string{t.binary, "-p", "--output-format", "text"}
	if t.model != "" && !containsNull(t.model) {
		args = append(args, "--model", t.model)
	}
	if req.Instructions != "" && !containsNull(req.Instructions) {
		args = append(args, "--append-system-prompt", req.Instructions)
	}
	return docdrive.Command{
		Args:  args,
		Stdin: req.UserText(),
	}, nil
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Normalize strips ANSI escape sequences and surrounding whitespace.
// Idempotent: a normalized string passes through unchanged.
func (t *Tool) Normalize(raw string) string {
	return strings.TrimSpace(ansiPattern.ReplaceAllString(raw, ""))
}

// ParseError maps Claude-specific diagnostics ahead of the shared
// classifier. Billing exhaustion and upstream overload have distinct
// taxonomy kinds that the shared rules cannot distinguish.
func (t *Tool) ParseError(res docdrive.Result) (*docdrive.ErrorEntry, bool) {
	if res.Cancelled || res.TimedOut {
		return nil, false
	}
	text := strings.ToLower(res.Stderr + "\n" + res.Stdout)
	switch {
	case strings.Contains(text, "credit balance is too low"),
		strings.Contains(text, "billing"):
		return t.entry(docdrive.KindQuotaExceeded, res), true
	case strings.Contains(text, "overloaded_error"),
		strings.Contains(text, "overloaded"):
		return t.entry(docdrive.KindModelOverloaded, res), true
	}
	return nil, false
}

func (t *Tool) entry(kind docdrive.Kind, res docdrive.Result) *docdrive.ErrorEntry {
	return &docdrive.ErrorEntry{
		Kind:        kind,
		Provider:    id,
		Message:     strings.TrimSpace(res.Stderr),
		Recoverable: kind.Recoverable(),
		UserMessage: classify.UserMessage(kind),
		Suggestions: classify.Suggestions(kind),
		ExitCode:    res.ExitCode,
	}
}

// VersionArgs returns the short-lived version probe arguments.
func (t *Tool) VersionArgs() []string { return []string{"--version"} }

// LoginCommand is the auth recovery step shown to users.
func (t *Tool) LoginCommand() string { return t.binary + " login" }

// InstallHint is the install recovery step shown to users.
func (t *Tool) InstallHint() string {
	return "Install Claude Code: npm install -g @anthropic-ai/claude-code"
}

// containsNull reports whether s contains a null byte.
func containsNull(s string) bool {
	return strings.ContainsRune(s, '\x00')
}
