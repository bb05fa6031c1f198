//go:build !windows

package engine_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/engine"
)

const (
	binEcho = "echo"
	binCat  = "cat"
	binBash = "bash"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunEchoSuccess(t *testing.T) {
	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args: []string{binEcho, "OK"},
	})

	assert.Equal(t, docdrive.StateCompleted, res.State)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "OK\n", res.Stdout)
	assert.False(t, res.TimedOut)
	assert.False(t, res.Cancelled)
	assert.Empty(t, res.Signal)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestRunStdinPayloadDelivered(t *testing.T) {
	const payload = "first page\n\nsecond page\n"

	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args:  []string{binCat},
		Stdin: payload,
	})

	require.True(t, res.Success)
	assert.Equal(t, payload, res.Stdout)
}

func TestRunEmptyStdinClosesPipe(t *testing.T) {
	// cat with no payload must see immediate EOF and exit, not hang.
	start := time.Now()
	res := engine.New(engine.WithTimeout(5*time.Second)).Run(testCtx(t), docdrive.Command{
		Args: []string{binCat},
	})

	assert.True(t, res.Success)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunNonzeroExit(t *testing.T) {
	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args: []string{binBash, "-c", "echo boom >&2; exit 3"},
	})

	assert.Equal(t, docdrive.StateCompleted, res.State)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "boom")
	assert.False(t, res.TimedOut)
	assert.False(t, res.Cancelled)
}

func TestRunSpawnFailure(t *testing.T) {
	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args: []string{"definitely-not-a-real-binary-f8e2"},
	})

	assert.Equal(t, docdrive.StateSpawnFailed, res.State)
	assert.False(t, res.Success)
	assert.Equal(t, -1, res.ExitCode)
	assert.NotEmpty(t, res.Stderr)
	assert.False(t, res.TimedOut)
	assert.False(t, res.Cancelled)
}

func TestRunEmptyCommand(t *testing.T) {
	res := engine.New().Run(testCtx(t), docdrive.Command{})

	assert.Equal(t, docdrive.StateSpawnFailed, res.State)
	assert.False(t, res.Success)
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	res := engine.New(
		engine.WithTimeout(500*time.Millisecond),
		engine.WithGracePeriod(300*time.Millisecond),
	).Run(testCtx(t), docdrive.Command{
		Args: []string{"sleep", "5"},
	})
	elapsed := time.Since(start)

	assert.Equal(t, docdrive.StateTimedOut, res.State)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Cancelled, "timeout and cancel must never both be set")
	assert.False(t, res.Success)
	assert.Less(t, elapsed, 3*time.Second, "timed-out run must not wait for natural exit")
}

func TestRunTimeoutIgnoresSIGTERM(t *testing.T) {
	// A child that traps SIGTERM forces the forceful phase. The run must
	// still resolve within timeout+grace, and the kill signal is recorded.
	start := time.Now()
	res := engine.New(
		engine.WithTimeout(500*time.Millisecond),
		engine.WithGracePeriod(300*time.Millisecond),
	).Run(testCtx(t), docdrive.Command{
		Args: []string{binBash, "-c", "trap '' TERM; sleep 5"},
	})
	elapsed := time.Since(start)

	assert.True(t, res.TimedOut)
	assert.False(t, res.Cancelled)
	assert.Less(t, elapsed, 4*time.Second)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, "SIGKILL", res.Signal)
}

func TestRunTimeoutWithUndrainedStdin(t *testing.T) {
	// A payload past the OS pipe buffer with a child that never reads
	// stdin leaves the payload writer blocked mid-write. Termination must
	// not queue behind that writer: the run resolves within
	// timeout+grace, not at the child's natural exit.
	payload := strings.Repeat("x", 1<<20)

	start := time.Now()
	res := engine.New(
		engine.WithTimeout(500*time.Millisecond),
		engine.WithGracePeriod(300*time.Millisecond),
	).Run(testCtx(t), docdrive.Command{
		Args:  []string{binBash, "-c", "exec sleep 5"},
		Stdin: payload,
	})
	elapsed := time.Since(start)

	assert.Equal(t, docdrive.StateTimedOut, res.State)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Cancelled)
	assert.Less(t, elapsed, 2*time.Second,
		"termination must not wait for the stdin writer")
}

func TestRunCancelWithUndrainedStdin(t *testing.T) {
	payload := strings.Repeat("x", 1<<20)
	ctx, cancel := context.WithCancel(testCtx(t))
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := engine.New(
		engine.WithTimeout(30*time.Second),
		engine.WithGracePeriod(300*time.Millisecond),
	).Run(ctx, docdrive.Command{
		Args:  []string{binBash, "-c", "exec sleep 5"},
		Stdin: payload,
	})
	elapsed := time.Since(start)

	assert.Equal(t, docdrive.StateCancelled, res.State)
	assert.True(t, res.Cancelled)
	assert.False(t, res.TimedOut)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRunCancelBeforeSpawn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := engine.New().Run(ctx, docdrive.Command{
		Args: []string{binEcho, "never runs"},
	})

	assert.Equal(t, docdrive.StateCancelled, res.State)
	assert.True(t, res.Cancelled)
	assert.False(t, res.TimedOut, "early cancel must never surface as timeout")
	assert.Empty(t, res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRunCancelDuringRun(t *testing.T) {
	ctx, cancel := context.WithCancel(testCtx(t))
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := engine.New(
		engine.WithTimeout(30*time.Second),
		engine.WithGracePeriod(300*time.Millisecond),
	).Run(ctx, docdrive.Command{
		Args: []string{"sleep", "5"},
	})
	elapsed := time.Since(start)

	assert.Equal(t, docdrive.StateCancelled, res.State)
	assert.True(t, res.Cancelled)
	assert.False(t, res.TimedOut)
	assert.False(t, res.Success)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestRunCaptureCap(t *testing.T) {
	res := engine.New(engine.WithMaxCapture(1024)).Run(testCtx(t), docdrive.Command{
		Args: []string{binBash, "-c", "head -c 100000 /dev/zero | tr '\\0' 'a'"},
	})

	require.True(t, res.Success)
	assert.Len(t, res.Stdout, 1024)
	assert.True(t, res.StdoutTruncated)
	assert.False(t, res.StderrTruncated)
}

func TestRunEnvOverride(t *testing.T) {
	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args: []string{binBash, "-c", "echo $DOCDRIVE_TEST_VAR"},
		Env:  map[string]string{"DOCDRIVE_TEST_VAR": "hello"},
	})

	require.True(t, res.Success)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunWorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	res := engine.New().Run(testCtx(t), docdrive.Command{
		Args: []string{binBash, "-c", "pwd"},
		Dir:  dir,
	})

	require.True(t, res.Success)
	// TempDir may resolve through symlinks; compare the unique leaf.
	assert.Contains(t, res.Stdout, lastPathElem(dir))
}

func TestRunProgressMonotonic(t *testing.T) {
	var mu sync.Mutex
	var reports []engine.Progress

	res := engine.New(
		engine.WithTimeout(10*time.Second),
		engine.WithProgressInterval(50*time.Millisecond),
		engine.WithProgress(func(p engine.Progress) {
			mu.Lock()
			reports = append(reports, p)
			mu.Unlock()
		}),
	).Run(testCtx(t), docdrive.Command{
		Args: []string{"sleep", "1"},
	})

	require.True(t, res.Success)
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, reports, "expected at least one progress report")
	prev := 0.0
	for i, p := range reports {
		assert.GreaterOrEqual(t, p.Percent, prev, "report %d regressed", i)
		assert.Less(t, p.Percent, 100.0, "progress must never reach 100 before a terminal event")
		prev = p.Percent
	}
}

func TestRunProgressByteCounters(t *testing.T) {
	var mu sync.Mutex
	var last engine.Progress

	payload := strings.Repeat("x", 4096)
	res := engine.New(
		engine.WithProgressInterval(20*time.Millisecond),
		engine.WithProgress(func(p engine.Progress) {
			mu.Lock()
			last = p
			mu.Unlock()
		}),
	).Run(testCtx(t), docdrive.Command{
		// Echo stdin back after a short delay so reporting ticks fire.
		Args:  []string{binBash, "-c", "cat; sleep 0.3"},
		Stdin: payload,
	})

	require.True(t, res.Success)
	assert.Equal(t, payload, res.Stdout)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(len(payload)), last.BytesWritten)
	assert.Equal(t, int64(len(payload)), last.BytesRead)
}

func TestRunExactlyOneTerminalState(t *testing.T) {
	cases := []struct {
		name string
		cmd  docdrive.Command
		opts []engine.Option
	}{
		{"success", docdrive.Command{Args: []string{binEcho, "hi"}}, nil},
		{"failure", docdrive.Command{Args: []string{binBash, "-c", "exit 1"}}, nil},
		{"timeout", docdrive.Command{Args: []string{"sleep", "5"}}, []engine.Option{
			engine.WithTimeout(200 * time.Millisecond),
			engine.WithGracePeriod(200 * time.Millisecond),
		}},
		{"spawn_failed", docdrive.Command{Args: []string{"no-such-binary-a1b2"}}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.New(tc.opts...).Run(testCtx(t), tc.cmd)

			states := 0
			for _, s := range []docdrive.State{
				docdrive.StateCompleted, docdrive.StateTimedOut,
				docdrive.StateCancelled, docdrive.StateSpawnFailed,
			} {
				if res.State == s {
					states++
				}
			}
			assert.Equal(t, 1, states, "exactly one terminal state, got %q", res.State)
			assert.False(t, res.TimedOut && res.Cancelled)
		})
	}
}

func lastPathElem(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
