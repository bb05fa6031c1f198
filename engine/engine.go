//go:build !windows

// Package engine runs one external tool process per call and reduces the
// three competing termination triggers — natural exit, wall-clock timeout,
// external cancellation — to exactly one terminal [docdrive.Result].
//
// The engine never returns a Go error for expected terminal conditions:
// spawn failure, nonzero exit, timeout, and cancellation are all encoded in
// the Result. Classifying a failing Result is the caller's concern.
package engine

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/specialmindsaarhus/docdrive"
)

// Engine executes commands. An Engine is stateless across runs and safe for
// reuse; all per-run state lives on the Run stack.
type Engine struct {
	opts Options
}

// New creates an Engine. Use Option functions to customize the timeout,
// grace period, capture cap, and progress reporting.
func New(opts ...Option) *Engine {
	return &Engine{opts: resolveOptions(opts...)}
}

// Run executes command and blocks until a terminal state is reached.
//
// ctx is the external cancellation signal: when it fires first, the run
// terminates with StateCancelled. The engine's own timer produces
// StateTimedOut. Whichever of {exit, timeout, cancel} is observed first
// determines the terminal state; the losers become no-ops.
func (e *Engine) Run(ctx context.Context, command docdrive.Command) docdrive.Result {
	start := time.Now()

	if len(command.Args) == 0 || command.Args[0] == "" {
		return spawnFailed(start, errors.New("engine: empty argument vector"))
	}
	if ctx.Err() != nil {
		// Cancelled before spawn: empty capture, never TimedOut.
		return docdrive.Result{
			State:     docdrive.StateCancelled,
			Cancelled: true,
			ExitCode:  -1,
			Duration:  time.Since(start),
		}
	}

	binary, err := exec.LookPath(command.Args[0])
	if err != nil {
		return spawnFailed(start, err)
	}

	cmd := exec.Command(binary, command.Args[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = mergeEnv(os.Environ(), command.Env)
	// Own process group so forceful termination reaches the tool's children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout := newCapture(e.opts.MaxCapture)
	stderr := newCapture(e.opts.MaxCapture)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	stdinRaw, err := cmd.StdinPipe()
	if err != nil {
		return spawnFailed(start, err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdinRaw.Close()
		return spawnFailed(start, err)
	}

	log := e.opts.Logger
	log.Debug().
		Int("pid", cmd.Process.Pid).
		Str("binary", binary).
		Msg("engine: spawned")

	stdin := newStdinPipe(stdinRaw)
	go stdin.feed(command.Stdin)

	if e.opts.Progress != nil {
		reporter := startProgress(
			e.opts.Progress, e.opts.ProgressInterval, e.opts.Timeout, start,
			stdin.bytesWritten,
			func() int64 { return stdout.Total() + stderr.Total() },
		)
		defer reporter.stop()
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	timer := time.NewTimer(e.opts.Timeout)
	defer timer.Stop()

	// The single-resolution latch: the first case to fire decides the
	// terminal state, and the losing triggers are never acted on.
	res := docdrive.Result{}
	var waitErr error
	select {
	case waitErr = <-waitCh:
		res.State = docdrive.StateCompleted
	case <-timer.C:
		res.State = docdrive.StateTimedOut
		res.TimedOut = true
		waitErr = e.terminate(cmd, stdin, waitCh)
	case <-ctx.Done():
		res.State = docdrive.StateCancelled
		res.Cancelled = true
		waitErr = e.terminate(cmd, stdin, waitCh)
	}
	stdin.close()

	res.ExitCode, res.Signal = exitStatus(waitErr)
	res.Success = res.State == docdrive.StateCompleted && waitErr == nil
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.StdoutTruncated = stdout.Truncated()
	res.StderrTruncated = stderr.Truncated()
	res.Duration = time.Since(start)

	log.Debug().
		Str("state", string(res.State)).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("engine: terminal")
	return res
}

// terminate performs two-phase termination and reaps the child.
//
// Phase 1 writes the legacy interrupt byte to stdin (best effort), closes
// the pipe, and sends SIGTERM to the process group. Phase 2, after the grace
// window, sends SIGKILL to the group. Always waits for the reaper so no
// zombie or goroutine outlives the run.
//
// The interrupt runs on its own goroutine: signaling proceeds immediately
// even if the ETX write stalls on a full pipe. The goroutine unblocks when
// the child dies (EPIPE) or Run's final close reaches the pipe.
func (e *Engine) terminate(cmd *exec.Cmd, stdin *stdinPipe, waitCh <-chan error) error {
	go stdin.interrupt()
	signalGroup(cmd.Process, syscall.SIGTERM)

	select {
	case err := <-waitCh:
		return err
	case <-time.After(e.opts.GracePeriod):
		signalGroup(cmd.Process, syscall.SIGKILL)
		return <-waitCh
	}
}

// signalGroup delivers sig to the process group, falling back to the single
// process if group delivery fails. Already-gone processes are not an error.
func signalGroup(proc *os.Process, sig syscall.Signal) {
	if proc == nil || proc.Pid <= 0 {
		return
	}
	if err := syscall.Kill(-proc.Pid, sig); err == nil || errors.Is(err, syscall.ESRCH) {
		return
	}
	// Group delivery failed; best effort on the process itself. The reaper
	// observes whatever state results either way.
	_ = proc.Signal(sig)
}

// exitStatus extracts the exit code and terminating signal name from a
// cmd.Wait error. nil → (0, ""). Signal-killed children report code -1.
func exitStatus(waitErr error) (int, string) {
	if waitErr == nil {
		return 0, ""
	}
	var ee *exec.ExitError
	if !errors.As(waitErr, &ee) {
		return -1, ""
	}
	code := ee.ExitCode()
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return code, unix.SignalName(ws.Signal())
	}
	return code, ""
}

// spawnFailed builds the SpawnFailed terminal result. The spawn error text
// lands in Stderr so classification sees the same signal it would from a
// tool's own diagnostics.
func spawnFailed(start time.Time, err error) docdrive.Result {
	return docdrive.Result{
		State:    docdrive.StateSpawnFailed,
		ExitCode: -1,
		Stderr:   err.Error(),
		Duration: time.Since(start),
	}
}

// mergeEnv overlays overrides onto the parent environment. Deterministic
// ordering keeps spawn logs stable.
func mergeEnv(parent []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return parent
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(parent)+len(overrides))
	env = append(env, parent...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
