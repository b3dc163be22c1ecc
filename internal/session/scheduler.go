package session

import (
	"sync"
	"time"
)

// Scheduler is the host's "next frame" primitive. RequestFrame arranges for fn to run once
// on the host's next frame and returns a function that cancels the call if it has not
// started. Callbacks from one scheduler never run concurrently.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Ticker runs requested callbacks on its own goroutine at a fixed rate.
type Ticker struct {
	interval time.Duration

	mu      sync.Mutex
	pending func()
	gen     uint64
	started bool
	done    chan struct{}
	closed  bool
}

// NewTicker returns a scheduler firing fps times per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &Ticker{interval: time.Second / time.Duration(fps), done: make(chan struct{})}
}

// RequestFrame implements Scheduler.
func (t *Ticker) RequestFrame(fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return func() {}
	}
	t.gen++
	gen := t.gen
	t.pending = fn
	if !t.started {
		t.started = true
		go t.loop()
	}
	return func() {
		t.mu.Lock()
		if t.gen == gen {
			t.pending = nil
		}
		t.mu.Unlock()
	}
}

func (t *Ticker) loop() {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-tick.C:
			t.mu.Lock()
			fn := t.pending
			t.pending = nil
			t.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}

// Close stops the ticker goroutine. Pending callbacks are dropped.
func (t *Ticker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.pending = nil
	close(t.done)
}

// Manual runs the pending callback only when Step is called; hosts that render on demand
// and tests use it.
type Manual struct {
	mu      sync.Mutex
	pending func()
	gen     uint64
}

// RequestFrame implements Scheduler.
func (m *Manual) RequestFrame(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	gen := m.gen
	m.pending = fn
	return func() {
		m.mu.Lock()
		if m.gen == gen {
			m.pending = nil
		}
		m.mu.Unlock()
	}
}

// Pending reports whether a callback is waiting.
func (m *Manual) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Step runs the pending callback, if any, and reports whether one ran.
func (m *Manual) Step() bool {
	m.mu.Lock()
	fn := m.pending
	m.pending = nil
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
