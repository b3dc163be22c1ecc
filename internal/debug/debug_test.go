package debug

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsFPS(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(func() time.Time { return now })
	for i := 0; i < 61; i++ {
		now = now.Add(time.Second / 60)
		s.Frame()
	}
	assert.Equal(t, uint64(61), s.Frames())
	assert.InDelta(t, 60, s.FPS(), 0.5)
}

func TestStatsText(t *testing.T) {
	s := New(nil)
	assert.Empty(t, s.Text())

	s.ShowFPS = true
	assert.Equal(t, "FPS: 0", s.Text())

	s.Error()
	// Cached until updateInterval more frames are drawn.
	assert.Equal(t, "FPS: 0", s.Text())
	for i := 0; i < updateInterval; i++ {
		s.Frame()
	}
	assert.Contains(t, s.Text(), "errors: 1")

	s.ShowMemAlloc = true
	for i := 0; i < updateInterval; i++ {
		s.Frame()
	}
	assert.Contains(t, s.Text(), "Mem: ")
}
