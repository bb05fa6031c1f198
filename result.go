package docdrive

import "time"

// State is the terminal state of one execution attempt. Exactly one state is
// reached per run; the first of process exit, timeout, and cancellation to be
// observed determines it.
type State string

const (
	// StateCompleted means the process exited on its own.
	StateCompleted State = "completed"

	// StateTimedOut means the wall-clock timeout expired first.
	StateTimedOut State = "timed_out"

	// StateCancelled means external cancellation fired first.
	StateCancelled State = "cancelled"

	// StateSpawnFailed means the process could not be started at all.
	// Distinct from a nonzero exit: the tool never ran.
	StateSpawnFailed State = "spawn_failed"
)

// Result is the terminal outcome of one execution attempt.
//
// The engine encodes every expected terminal condition here rather than
// returning an error; converting a failing Result into an [*ErrorEntry] is
// the facade's job alone.
type Result struct {
	// State is the terminal state reached.
	State State `json:"state"`

	// Success is true iff the process exited zero with neither timeout
	// nor cancellation racing ahead of it.
	Success bool `json:"success"`

	// ExitCode is the process exit status. -1 when the process was
	// signal-killed or never ran.
	ExitCode int `json:"exit_code"`

	// Stdout and Stderr hold the captured streams, possibly truncated at
	// the engine's capture cap.
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	// StdoutTruncated / StderrTruncated report whether the capture cap
	// was hit for the respective stream.
	StdoutTruncated bool `json:"stdout_truncated,omitempty"`
	StderrTruncated bool `json:"stderr_truncated,omitempty"`

	// Signal is the name of the terminating signal ("SIGKILL") when the
	// process was killed, empty otherwise.
	Signal string `json:"signal,omitempty"`

	// TimedOut and Cancelled record which trigger terminated the run.
	// At most one is true; if both conditions raced, the first observed
	// wins and sets only its own flag.
	TimedOut  bool `json:"timed_out,omitempty"`
	Cancelled bool `json:"cancelled,omitempty"`

	// Duration is wall-clock time from spawn to terminal state.
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the result should be classified into an ErrorEntry.
func (r Result) Failed() bool { return !r.Success }
