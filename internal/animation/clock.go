package animation

import (
	"sync"
	"time"
)

// Clock reports milliseconds elapsed since the session started.
type Clock interface {
	ElapsedMs() float64
}

// WallClock measures elapsed time with the monotonic reading of time.Now.
type WallClock struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
}

// NewClock returns a clock started at the current instant. now may be nil for time.Now.
func NewClock(now func() time.Time) *WallClock {
	if now == nil {
		now = time.Now
	}
	return &WallClock{now: now, start: now()}
}

// Reset restarts the clock at zero.
func (c *WallClock) Reset() {
	c.mu.Lock()
	c.start = c.now()
	c.mu.Unlock()
}

// ElapsedMs implements Clock.
func (c *WallClock) ElapsedMs() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.now().Sub(c.start)) / float64(time.Millisecond)
}

// ManualClock is advanced explicitly; used for deterministic rendering and tests.
type ManualClock struct {
	mu sync.Mutex
	ms float64
}

// Set jumps to ms.
func (c *ManualClock) Set(ms float64) {
	c.mu.Lock()
	c.ms = ms
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ms += float64(d) / float64(time.Millisecond)
	c.mu.Unlock()
}

// ElapsedMs implements Clock.
func (c *ManualClock) ElapsedMs() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}
