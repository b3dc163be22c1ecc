package debug

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	// updateInterval: only refresh the HUD text every N frames to reduce allocations.
	updateInterval = 30
	fpsWindow      = time.Second
)

// Stats counts drawn frames and failed draws and derives FPS and heap usage for status text.
// Overlays are off by default. Safe for concurrent use.
type Stats struct {
	ShowFPS      bool
	ShowMemAlloc bool

	mu           sync.Mutex
	now          func() time.Time
	frames       uint64
	errors       uint64
	windowStart  time.Time
	windowFrames int
	fps          float64
	lastText     string
	textFrame    uint64
	memStats     runtime.MemStats
}

// New returns empty stats. now may be nil for time.Now.
func New(now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{now: now, windowStart: now()}
}

// Frame records one drawn frame.
func (s *Stats) Frame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.windowFrames++
	t := s.now()
	if d := t.Sub(s.windowStart); d >= fpsWindow {
		s.fps = float64(s.windowFrames) / d.Seconds()
		s.windowFrames = 0
		s.windowStart = t
	}
}

// Error records one failed draw.
func (s *Stats) Error() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// Frames returns the number of frames drawn.
func (s *Stats) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Errors returns the number of failed draws.
func (s *Stats) Errors() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// FPS returns the frame rate measured over the last full second, or 0 before one has passed.
func (s *Stats) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

// Text returns the enabled overlays as one line, e.g. "FPS: 60  Mem: 3.20 MiB".
// The text is only recomputed every updateInterval frames.
func (s *Stats) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ShowFPS && !s.ShowMemAlloc {
		return ""
	}
	if s.lastText != "" && s.frames-s.textFrame < updateInterval {
		return s.lastText
	}
	var parts []string
	if s.ShowFPS {
		parts = append(parts, fmt.Sprintf("FPS: %.0f", s.fps))
	}
	if s.ShowMemAlloc {
		runtime.ReadMemStats(&s.memStats)
		parts = append(parts, fmt.Sprintf("Mem: %.2f MiB", float64(s.memStats.Alloc)/(1024*1024)))
	}
	if s.errors > 0 {
		parts = append(parts, fmt.Sprintf("errors: %d", s.errors))
	}
	s.lastText = strings.Join(parts, "  ")
	s.textFrame = s.frames
	return s.lastText
}
