//go:build !windows

package provider

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/classify"
	"github.com/specialmindsaarhus/docdrive/engine"
)

// versionProbeTimeout bounds the short-lived --version style invocation.
const versionProbeTimeout = 10 * time.Second

// Facade adapts one Tool to the uniform execution contract.
//
// A Facade owns memoized availability and version state for the life of the
// instance; everything else is created and discarded per Send call. A Facade
// supports one in-flight Send at a time — overlapping Send calls on the same
// instance are a caller error, not internally guarded.
type Facade struct {
	tool    Tool
	caps    capabilities
	logger  zerolog.Logger
	engOpts []engine.Option

	availOnce sync.Once
	available bool

	verOnce sync.Once
	version string
	hasVer  bool
}

// FacadeOption configures a Facade at construction time.
type FacadeOption func(*Facade)

// WithLogger sets the logger for lifecycle and failure events.
func WithLogger(l zerolog.Logger) FacadeOption {
	return func(f *Facade) { f.logger = l }
}

// WithEngineOptions sets base engine options applied to every Send.
// Per-call SendOptions are layered on top.
func WithEngineOptions(opts ...engine.Option) FacadeOption {
	return func(f *Facade) { f.engOpts = opts }
}

// New creates a Facade for tool. Optional capabilities (ErrorParser,
// UsageParser, VersionProber, Authenticator, Installer) are discovered by
// type assertion once, here.
func New(tool Tool, opts ...FacadeOption) *Facade {
	f := &Facade{
		tool:   tool,
		caps:   resolveCapabilities(tool),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ID returns the tool's stable provider identifier.
func (f *Facade) ID() string { return f.tool.ID() }

// DisplayName returns the tool's human-readable name.
func (f *Facade) DisplayName() string { return f.tool.DisplayName() }

// Available reports whether the tool's executable can be located via PATH
// search. The probe runs once; the result is memoized for the life of the
// facade instance.
func (f *Facade) Available() bool {
	f.availOnce.Do(func() {
		_, err := exec.LookPath(f.tool.Executable())
		f.available = err == nil
		f.logger.Debug().
			Str("provider", f.tool.ID()).
			Bool("available", f.available).
			Msg("provider: availability probe")
	})
	return f.available
}

// Version returns the tool's version string, probing once with a short
// timeout. Returns ("", false) when the tool is unavailable, lacks a
// VersionProber capability, or the probe fails.
func (f *Facade) Version() (string, bool) {
	f.verOnce.Do(func() {
		if !f.Available() || f.caps.version == nil {
			return
		}
		eng := engine.New(engine.WithTimeout(versionProbeTimeout))
		res := eng.Run(context.Background(), docdrive.Command{
			Args: append([]string{f.tool.Executable()}, f.caps.version.VersionArgs()...),
		})
		if !res.Success {
			return
		}
		if v := strings.TrimSpace(firstLine(res.Stdout)); v != "" {
			f.version = v
			f.hasVer = true
		}
	})
	return f.version, f.hasVer
}

// SendOption configures one Send call.
type SendOption func(*sendOptions)

type sendOptions struct {
	timeout  time.Duration
	progress func(engine.Progress)
}

// WithTimeout overrides the engine timeout for this call.
// Values <= 0 are ignored.
func WithTimeout(d time.Duration) SendOption {
	return func(o *sendOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithProgress installs a progress callback for this call.
func WithProgress(fn func(engine.Progress)) SendOption {
	return func(o *sendOptions) { o.progress = fn }
}

// Send performs one analysis invocation: availability check, command build,
// engine run, then classification (on failure) or normalization (on
// success). ctx is the external cancellation signal.
//
// Every failure path returns a *docdrive.ErrorEntry — callers never branch
// on failure origin by type.
func (f *Facade) Send(ctx context.Context, req docdrive.Request, opts ...SendOption) (*docdrive.Response, error) {
	var so sendOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}

	if !f.Available() {
		return nil, f.decorate(&docdrive.ErrorEntry{
			Kind:        docdrive.KindNotInstalled,
			Provider:    f.tool.ID(),
			Message:     "executable not found: " + f.tool.Executable(),
			Recoverable: true,
			UserMessage: classify.UserMessage(docdrive.KindNotInstalled),
			Suggestions: classify.Suggestions(docdrive.KindNotInstalled),
		})
	}

	if err := req.Validate(); err != nil {
		return nil, f.configEntry("invalid request: "+err.Error(), err)
	}

	command, err := f.tool.BuildCommand(req)
	if err != nil {
		return nil, f.configEntry("build command: "+err.Error(), err)
	}

	engOpts := make([]engine.Option, 0, len(f.engOpts)+2)
	engOpts = append(engOpts, f.engOpts...)
	engOpts = append(engOpts, engine.WithLogger(f.logger))
	if so.timeout > 0 {
		engOpts = append(engOpts, engine.WithTimeout(so.timeout))
	}
	if so.progress != nil {
		engOpts = append(engOpts, engine.WithProgress(so.progress))
	}

	res := engine.New(engOpts...).Run(ctx, command)
	if res.Failed() {
		entry := f.classify(res)
		f.logger.Debug().
			Str("provider", f.tool.ID()).
			Str("kind", string(entry.Kind)).
			Int("exit_code", res.ExitCode).
			Dur("latency", res.Duration).
			Msg("provider: send failed")
		return nil, entry
	}

	var usage *docdrive.Usage
	if f.caps.usage != nil {
		usage = f.caps.usage.ParseUsage(res.Stdout, res.Stderr)
	}

	resp := &docdrive.Response{
		ID: uuid.NewString(),
		Message: docdrive.Message{
			Role:    docdrive.RoleAssistant,
			Content: f.tool.Normalize(res.Stdout),
		},
		Usage: usage,
		Meta: docdrive.ProviderMeta{
			Provider: f.tool.ID(),
			Latency:  res.Duration,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		},
	}
	f.logger.Debug().
		Str("provider", f.tool.ID()).
		Str("response_id", resp.ID).
		Dur("latency", res.Duration).
		Msg("provider: send ok")
	return resp, nil
}

// classify runs the tool-specific error layer, falling back to the shared
// classifier, and decorates the entry with tool-specific suggestions.
func (f *Facade) classify(res docdrive.Result) *docdrive.ErrorEntry {
	if f.caps.errors != nil {
		if entry, ok := f.caps.errors.ParseError(res); ok {
			return f.decorate(entry)
		}
	}
	return f.decorate(classify.Classify(f.tool.ID(), res))
}

// decorate prepends tool-specific recovery steps for auth and install
// failures, when the tool advertises them.
func (f *Facade) decorate(entry *docdrive.ErrorEntry) *docdrive.ErrorEntry {
	switch entry.Kind {
	case docdrive.KindAuth:
		if f.caps.auth != nil {
			entry.Suggestions = prepend(entry.Suggestions, "Run: "+f.caps.auth.LoginCommand())
		}
	case docdrive.KindNotInstalled:
		if f.caps.installer != nil {
			entry.Suggestions = prepend(entry.Suggestions, f.caps.installer.InstallHint())
		}
	}
	return entry
}

func (f *Facade) configEntry(msg string, cause error) *docdrive.ErrorEntry {
	return &docdrive.ErrorEntry{
		Kind:        docdrive.KindConfig,
		Provider:    f.tool.ID(),
		Message:     msg,
		Recoverable: true,
		UserMessage: classify.UserMessage(docdrive.KindConfig),
		Suggestions: classify.Suggestions(docdrive.KindConfig),
		Cause:       cause,
	}
}

func prepend(s []string, head string) []string {
	return append([]string{head}, s...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
