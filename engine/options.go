package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// Default engine configuration values.
const (
	defaultTimeout          = 300 * time.Second
	defaultGracePeriod      = 2 * time.Second
	defaultMaxCapture       = 10 << 20 // 10 MiB per stream
	defaultProgressInterval = 250 * time.Millisecond
)

// Progress is a point-in-time progress report for one run.
//
// Percent is estimated from elapsed time (the tools emit no native progress
// signal) and is monotonically non-decreasing; it never reaches 100 before a
// terminal event. Byte counters are cumulative: bytes written to the child's
// stdin and bytes read from its stdout and stderr combined.
type Progress struct {
	Percent      float64
	BytesWritten int64
	BytesRead    int64
}

// Options holds resolved construction-time configuration for an Engine.
// Use New with Option functions to customize these values.
type Options struct {
	// Timeout is the wall-clock limit for one run.
	Timeout time.Duration

	// GracePeriod is the window between graceful interrupt and SIGKILL.
	GracePeriod time.Duration

	// MaxCapture is the per-stream capture cap in bytes. Output beyond
	// the cap is dropped (head is kept) and the truncated flag is set.
	MaxCapture int

	// Progress, when non-nil, receives periodic progress reports.
	Progress func(Progress)

	// ProgressInterval is the reporting period for Progress callbacks.
	ProgressInterval time.Duration

	// Logger receives debug-level lifecycle events.
	Logger zerolog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Options)

// WithTimeout sets the wall-clock limit for one run.
// Values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithGracePeriod sets the window between graceful interrupt and SIGKILL.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithMaxCapture sets the per-stream capture cap in bytes.
// Values <= 0 are ignored.
func WithMaxCapture(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxCapture = n
		}
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn func(Progress)) Option {
	return func(o *Options) { o.Progress = fn }
}

// WithProgressInterval sets the progress reporting period.
// Values <= 0 are ignored.
func WithProgressInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ProgressInterval = d
		}
	}
}

// WithLogger sets the logger for debug-level lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func resolveOptions(opts ...Option) Options {
	o := Options{
		Timeout:          defaultTimeout,
		GracePeriod:      defaultGracePeriod,
		MaxCapture:       defaultMaxCapture,
		ProgressInterval: defaultProgressInterval,
		Logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
