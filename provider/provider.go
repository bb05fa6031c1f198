// Package provider binds one external CLI tool to the uniform execution
// contract: availability and version probing, command building, engine
// execution, failure classification, and output normalization behind a
// single [Facade].
//
// Interfaces are defined here, at the consumer side, rather than in the tool
// packages — tool packages (claude, gemini) provide concrete implementations.
package provider

import "github.com/specialmindsaarhus/docdrive"

// Tool is the required contract for one external CLI tool. Implementations
// must be pure: BuildCommand and Normalize perform no I/O and hold no
// mutable state.
type Tool interface {
	// ID is the stable provider identifier ("claude", "gemini").
	ID() string

	// DisplayName is the human-readable tool name.
	DisplayName() string

	// Executable is the binary name resolved via PATH search.
	Executable() string

	// BuildCommand translates a request into the tool's concrete
	// invocation. The document payload must travel on Command.Stdin,
	// never in the argument vector.
	BuildCommand(req docdrive.Request) (docdrive.Command, error)

	// Normalize cleans raw captured stdout into presentable analysis
	// text. Must be idempotent: Normalize(Normalize(s)) == Normalize(s).
	Normalize(raw string) string
}

// ErrorParser is an optional capability: a tool-specific classification
// layer consulted before the shared classifier. Returning ok=false falls
// through to the shared rules.
type ErrorParser interface {
	ParseError(res docdrive.Result) (*docdrive.ErrorEntry, bool)
}

// UsageParser is an optional capability: extract token usage counters from
// the captured streams. Returning nil means the tool reported none.
type UsageParser interface {
	ParseUsage(stdout, stderr string) *docdrive.Usage
}

// VersionProber is an optional capability: the arguments (after the binary)
// for a short-lived version probe.
type VersionProber interface {
	VersionArgs() []string
}

// Authenticator is an optional capability: the login command suggested to
// users on authentication failures.
type Authenticator interface {
	LoginCommand() string
}

// Installer is an optional capability: the installation hint suggested to
// users when the tool is missing.
type Installer interface {
	InstallHint() string
}

// capabilities holds resolved optional interfaces for a tool.
// Resolved once in New, mirroring how the engine-facing contract stays a
// single small interface.
type capabilities struct {
	errors    ErrorParser
	usage     UsageParser
	version   VersionProber
	auth      Authenticator
	installer Installer
}

func resolveCapabilities(tool Tool) capabilities {
	var caps capabilities
	if p, ok := tool.(ErrorParser); ok {
		caps.errors = p
	}
	if u, ok := tool.(UsageParser); ok {
		caps.usage = u
	}
	if v, ok := tool.(VersionProber); ok {
		caps.version = v
	}
	if a, ok := tool.(Authenticator); ok {
		caps.auth = a
	}
	if i, ok := tool.(Installer); ok {
		caps.installer = i
	}
	return caps
}
