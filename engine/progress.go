package engine

import (
	"math"
	"time"
)

// estimatePercent derives a progress percentage from elapsed time. The curve
// grows quickly at first and flattens toward the timeout boundary, capped at
// 95 so completion is never reported before a terminal event.
func estimatePercent(elapsed, timeout time.Duration) float64 {
	if timeout <= 0 || elapsed <= 0 {
		return 0
	}
	p := 100 * (1 - math.Exp(-3*elapsed.Seconds()/timeout.Seconds()))
	return math.Min(95, p)
}

// progressReporter periodically invokes the progress callback from its own
// goroutine. stop() blocks until the goroutine has exited, guaranteeing no
// callback fires after the run returns.
type progressReporter struct {
	stopCh chan struct{}
	doneCh chan struct{}
}

func startProgress(
	fn func(Progress),
	interval, timeout time.Duration,
	started time.Time,
	written, read func() int64,
) *progressReporter {
	r := &progressReporter{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last float64
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				pct := estimatePercent(time.Since(started), timeout)
				if pct < last {
					pct = last
				}
				last = pct
				fn(Progress{
					Percent:      pct,
					BytesWritten: written(),
					BytesRead:    read(),
				})
			}
		}
	}()
	return r
}

func (r *progressReporter) stop() {
	close(r.stopCh)
	<-r.doneCh
}
