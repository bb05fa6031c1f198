package engine

import (
	"io"
	"sync"
	"sync/atomic"
)

// etx is the ASCII end-of-text byte (Ctrl-C convention). Written as a
// legacy best-effort graceful interrupt before process-group signaling;
// most tools ignore stdin bytes once processing has begun.
const etx = 0x03

// stdinPipe wraps the child's stdin with close-once discipline and a byte
// counter. The payload feeder, the interrupt path, and Run itself may all
// race to close the pipe; exactly one close reaches the underlying pipe.
//
// The mutex guards only the closed/writing flags, never a pipe write: a
// payload larger than the OS pipe buffer blocks the writer until the child
// drains it, and close() must stay acquirable to unblock that writer
// (closing an *os.File interrupts a pending Write). Termination must never
// queue up behind a stalled payload write.
type stdinPipe struct {
	mu      sync.Mutex
	wc      io.WriteCloser
	closed  bool
	writing bool
	written atomic.Int64
}

func newStdinPipe(wc io.WriteCloser) *stdinPipe {
	return &stdinPipe{wc: wc}
}

// feed writes the payload and closes the pipe, signaling end-of-input.
// Called on its own goroutine; write errors are ignored (a child that exits
// without reading stdin produces EPIPE, which is not a failure of the run).
func (p *stdinPipe) feed(payload string) {
	if payload != "" {
		p.mu.Lock()
		open := !p.closed
		p.writing = true
		p.mu.Unlock()

		if open {
			// Unlocked: may block on a full pipe until the child
			// drains it or a concurrent close() interrupts it.
			n, _ := io.WriteString(p.wc, payload)
			p.written.Add(int64(n))
		}

		p.mu.Lock()
		p.writing = false
		p.mu.Unlock()
	}
	p.close()
}

// interrupt is phase 1 of two-phase termination: write ETX if the pipe is
// still writable, then close it. Reports whether the byte was delivered.
//
// A pipe with the payload write still in flight is not writable — the child
// is not draining stdin, so ETX delivery is skipped and the close alone
// unblocks the stalled feeder.
func (p *stdinPipe) interrupt() bool {
	p.mu.Lock()
	canWrite := !p.closed && !p.writing
	p.mu.Unlock()

	delivered := false
	if canWrite {
		if _, err := p.wc.Write([]byte{etx}); err == nil {
			delivered = true
		}
	}
	p.close()
	return delivered
}

func (p *stdinPipe) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		_ = p.wc.Close()
	}
}

// bytesWritten returns the cumulative payload bytes delivered to the child.
func (p *stdinPipe) bytesWritten() int64 {
	return p.written.Load()
}
