package engine

import (
	"bytes"
	"sync"
)

// capture is a size-capped stream sink. Writes beyond max keep counting into
// Total but are dropped; the head of the stream is retained. Safe for use as
// an exec.Cmd stream writer (single writer goroutine) with concurrent reads
// from the progress reporter.
type capture struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	max       int
	total     int64
	truncated bool
}

func newCapture(max int) *capture {
	return &capture{max: max}
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += int64(len(p))
	remaining := c.max - c.buf.Len()
	switch {
	case remaining >= len(p):
		c.buf.Write(p)
	case remaining > 0:
		c.buf.Write(p[:remaining])
		c.truncated = true
	case len(p) > 0:
		c.truncated = true
	}
	// Report full consumption so the child never sees a write error.
	return len(p), nil
}

// String returns the retained head of the stream.
func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Truncated reports whether the cap was hit.
func (c *capture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

// Total returns the cumulative byte count, including dropped bytes.
func (c *capture) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
