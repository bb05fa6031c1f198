// Package gemini adapts the Gemini CLI to the provider contract.
//
// Gemini has no dedicated system-instructions flag: the instructions block
// is concatenated ahead of the document payload with an explicit separator,
// all delivered on stdin. From the caller's perspective the behavior is
// identical to a tool with a dedicated flag — instructions are always
// honored.
package gemini

import (
	"strings"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/classify"
	"github.com/specialmindsaarhus/docdrive/provider"
)

const (
	defaultBinary = "gemini"
	id            = "gemini"
	displayName   = "Gemini CLI"

	// instructionsSeparator divides the instructions block from the
	// document payload on stdin.
	instructionsSeparator = "\n\n---\n\n"
)

// noiseLines are startup chatter the Gemini CLI prints to stdout, removed
// during normalization.
var noiseLines = map[string]struct{}{
	"Loaded cached credentials.":   {},
	"Data collection is disabled.": {},
}

// Tool is the Gemini CLI provider.
type Tool struct {
	binary string
	model  string
}

// Compile-time interface satisfaction checks.
var (
	_ provider.Tool          = (*Tool)(nil)
	_ provider.ErrorParser   = (*Tool)(nil)
	_ provider.VersionProber = (*Tool)(nil)
	_ provider.Installer     = (*Tool)(nil)
)

// Option configures a Tool at construction time.
type Option func(*Tool)

// WithBinary overrides the Gemini CLI binary name.
// Empty values are ignored; the default is "gemini".
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

// New creates a Gemini CLI provider with the given options.
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

// BuildCommand translates a request into a Gemini invocation. Instructions
// and payload are joined with the separator and delivered on stdin.
func (t *Tool) BuildCommand(req docdrive.Request) (docdrive.Command, error) {
	args := []string{t.binary}
	if t.model != "" && !containsNull(t.model) {
		args = append(args, "--model", t.model)
	}

	payload := req.UserText()
	if req.Instructions != "" {
		payload = req.Instructions + instructionsSeparator + payload
	}
	return docdrive.Command{
		Args:  args,
		Stdin: payload,
	}, nil
}

// Normalize drops credential-cache noise lines and trims surrounding
// whitespace. Idempotent.
func (t *Tool) Normalize(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if _, noise := noiseLines[strings.TrimSpace(line)]; noise {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ParseError maps Gemini-specific diagnostics ahead of the shared
// classifier.
func (t *Tool) ParseError(res docdrive.Result) (*docdrive.ErrorEntry, bool) {
	if res.Cancelled || res.TimedOut {
		return nil, false
	}
	text := strings.ToLower(res.Stderr + "\n" + res.Stdout)
	switch {
	case strings.Contains(text, "resource has been exhausted"),
		strings.Contains(text, "resource_exhausted"):
		return t.entry(docdrive.KindQuotaExceeded, res), true
	case strings.Contains(text, "model is overloaded"):
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

// InstallHint is the install recovery step shown to users.
func (t *Tool) InstallHint() string {
	return "Install the Gemini CLI: npm install -g @google/gemini-cli"
}

// containsNull reports whether s contains a null byte.
func containsNull(s string) bool {
	return strings.ContainsRune(s, '\x00')
}
