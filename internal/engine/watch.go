package engine

import (
	"context"
	"time"

	"github.com/lilacgalaxy/vts-face-tracker/internal/timeutil"
)

// Watch is the consumer side: every interval on clk it reads the retained
// result and passes it to fn when its timestamp changed since the last call.
// Results computed between two polls are skipped. When ctx is done Watch
// checks once more and returns, so the producer's final result is seen.
func (e *Engine) Watch(ctx context.Context, clk timeutil.Clock, interval time.Duration, fn func(*Result)) {
	if clk == nil {
		clk = timeutil.RealClock{}
	}
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	var (
		seen bool
		last int64
	)
	poll := func() {
		r := e.Latest()
		if r == nil || (seen && r.Timestamp == last) {
			return
		}
		seen, last = true, r.Timestamp
		fn(r)
	}
	for {
		select {
		case <-ctx.Done():
			poll()
			return
		case <-ticker.C():
			poll()
		}
	}
}
