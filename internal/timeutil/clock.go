// Package timeutil provides a testable abstraction over wall time and
// tickers.
package timeutil

import (
	"sync"
	"time"
)

// Clock provides the time operations the pollers and recorders need.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks at an interval.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock implements Clock using the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.t.C }
func (t realTicker) Stop()               { t.t.Stop() }

// ManualClock only moves when Advance is called.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*ManualTicker
	added   chan struct{}
}

// NewManualClock returns a clock reading t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t, added: make(chan struct{}, 64)}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	t := &ManualTicker{ch: make(chan time.Time, 1), interval: d, next: c.now.Add(d)}
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()

	select {
	case c.added <- struct{}{}:
	default:
	}
	return t
}

// TickerAdded is signalled each time a ticker is created, so a test can wait
// for a goroutine to start polling before advancing.
func (c *ManualClock) TickerAdded() <-chan struct{} { return c.added }

// Advance moves the clock forward and fires every ticker that came due. A
// ticker whose previous tick was not consumed drops the new one, as
// time.Ticker does.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*ManualTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// ManualTicker is the Ticker returned by ManualClock.
type ManualTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *ManualTicker) C() <-chan time.Time { return t.ch }

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *ManualTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || now.Before(t.next) {
		return
	}
	select {
	case t.ch <- now:
	default:
	}
	for !t.next.After(now) {
		t.next = t.next.Add(t.interval)
	}
}
