package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viz-engine/internal/animation"
	"viz-engine/internal/backend"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
)

type fakeBackend struct {
	kind    backend.Kind
	initErr error

	mu      sync.Mutex
	draws   int
	last    compositor.Frame
	closed  bool
	entered chan struct{}
	release chan struct{}
}

func (b *fakeBackend) Kind() backend.Kind { return b.kind }

func (b *fakeBackend) Init(s backend.Surface) error {
	if err := backend.CheckSurface(s); err != nil {
		return err
	}
	return b.initErr
}

func (b *fakeBackend) Draw(f compositor.Frame, _ image.Point) error {
	if b.entered != nil {
		b.entered <- struct{}{}
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws++
	b.last = f
	return nil
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) count() (int, compositor.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draws, b.last
}

type statusLog struct {
	mu  sync.Mutex
	got []Status
}

func (l *statusLog) record(s Status, _ error) {
	l.mu.Lock()
	l.got = append(l.got, s)
	l.mu.Unlock()
}

func (l *statusLog) all() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Status(nil), l.got...)
}

func newSession(t *testing.T, b backend.Backend, sched Scheduler, mutate func(*Config)) (*Session, *statusLog) {
	t.Helper()
	log := &statusLog{}
	cfg := Config{
		Concept:   "atom",
		Subject:   "Chemistry",
		Backend:   b,
		Surface:   backend.NewBuffer(image.Pt(160, 120)),
		Scheduler: sched,
		Clock:     &animation.ManualClock{},
		OnStatus:  log.record,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	require.NoError(t, err)
	return s, log
}

func TestHundredFramesThenNone(t *testing.T) {
	fb := &fakeBackend{kind: backend.Markup}
	var sched Manual
	s, status := newSession(t, fb, &sched, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, Active, s.State())

	for i := 0; i < 100; i++ {
		require.True(t, sched.Step(), "frame %d", i)
	}
	s.Stop()
	assert.False(t, sched.Step())
	assert.False(t, sched.Pending())

	draws, last := fb.count()
	assert.Equal(t, 100, draws)
	ok, failed := s.Draws()
	assert.Equal(t, 100, ok)
	assert.Zero(t, failed)
	assert.Equal(t, geometry.AtomicStructure, last.Concept)
	assert.Equal(t, "Chemistry", last.Subject)
	assert.True(t, fb.closed)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, []Status{StatusAcquiring, StatusReady, StatusEnded}, status.all())

	s.Stop()
	assert.Equal(t, []Status{StatusAcquiring, StatusReady, StatusEnded}, status.all())
}

func TestStartTwice(t *testing.T) {
	var sched Manual
	s, _ := newSession(t, &fakeBackend{kind: backend.Canvas}, &sched, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrNotIdle)
	s.Stop()
}

func TestFallbackOnInitError(t *testing.T) {
	primary := &fakeBackend{kind: backend.Pipeline, initErr: &backend.InitError{Backend: backend.Pipeline, Err: errors.New("no GL")}}
	var sched Manual
	s, status := newSession(t, primary, &sched, nil)
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, backend.Canvas, s.Backend().Kind())
	assert.True(t, primary.closed)
	assert.Equal(t, []Status{StatusAcquiring, StatusFallbackActive}, status.all())

	require.True(t, sched.Step())
	buf := s.cfg.Surface.(*backend.Buffer)
	assert.Equal(t, 1, buf.Presents())
	require.NotNil(t, buf.Last())
	s.Stop()
}

func TestSurfaceUnavailable(t *testing.T) {
	var sched Manual
	s, status := newSession(t, &fakeBackend{kind: backend.Canvas}, &sched, func(c *Config) {
		c.Surface = backend.NewBuffer(image.Point{})
	})
	err := s.Start(context.Background())
	var unavailable *backend.SurfaceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, []Status{StatusAcquiring, StatusError}, status.all())
	assert.False(t, sched.Pending())
}

func TestAcquireTimeout(t *testing.T) {
	var sched Manual
	s, status := newSession(t, &fakeBackend{kind: backend.Canvas}, &sched, func(c *Config) {
		c.AcquireTimeout = 20 * time.Millisecond
		c.Prerequisite = func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
	})
	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrAcquireTimeout)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, []Status{StatusAcquiring, StatusError}, status.all())
}

func TestPrerequisiteResolves(t *testing.T) {
	ready := make(chan struct{})
	var sched Manual
	s, _ := newSession(t, &fakeBackend{kind: backend.Canvas}, &sched, func(c *Config) {
		c.Prerequisite = func(ctx context.Context) error {
			select {
			case <-ready:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	close(ready)
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, sched.Pending())
	s.Stop()
}

func TestStopWhileAcquiring(t *testing.T) {
	fb := &fakeBackend{kind: backend.Canvas}
	waiting := make(chan struct{})
	var sched Manual
	s, status := newSession(t, fb, &sched, func(c *Config) {
		c.AcquireTimeout = time.Minute
		c.Prerequisite = func(ctx context.Context) error {
			close(waiting)
			<-ctx.Done()
			return ctx.Err()
		}
	})

	started := make(chan error, 1)
	go func() { started <- s.Start(context.Background()) }()
	<-waiting
	s.Stop()

	select {
	case err := <-started:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.Equal(t, Ended, s.State())
	assert.False(t, sched.Pending())
	draws, _ := fb.count()
	assert.Zero(t, draws)
	assert.Equal(t, []Status{StatusAcquiring, StatusEnded}, status.all())
}

func TestInputAndConceptSwitch(t *testing.T) {
	fb := &fakeBackend{kind: backend.Canvas}
	var sched Manual
	s, _ := newSession(t, fb, &sched, nil)
	require.NoError(t, s.Start(context.Background()))
	require.True(t, sched.Step())
	_, first := fb.count()

	s.Input(func(c *camera.Controller) { c.Pan(1, 0) })
	require.True(t, sched.Step())
	_, moved := fb.count()
	assert.NotEqual(t, first.Camera.Target, moved.Camera.Target)

	desc := s.SetConcept("solar system")
	assert.Equal(t, geometry.SolarSystem, desc.Concept)
	require.True(t, sched.Step())
	_, switched := fb.count()
	assert.Equal(t, geometry.SolarSystem, switched.Concept)
	home := camera.Default(desc.SuggestedCameraDistance)
	home.Clamp()
	assert.Equal(t, home, switched.Camera)

	s.SetSubject("Astronomy")
	require.True(t, sched.Step())
	_, labelled := fb.count()
	assert.Equal(t, "Astronomy", labelled.Subject)
	s.Stop()
}

func TestStopWaitsForInFlightDraw(t *testing.T) {
	fb := &fakeBackend{kind: backend.Canvas, entered: make(chan struct{}), release: make(chan struct{})}
	var sched Manual
	s, _ := newSession(t, fb, &sched, nil)
	require.NoError(t, s.Start(context.Background()))

	go sched.Step()
	<-fb.entered

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("Stop returned while a draw was in flight")
	case <-time.After(30 * time.Millisecond):
	}
	close(fb.release)
	<-stopped

	draws, _ := fb.count()
	assert.Equal(t, 1, draws)
	assert.False(t, sched.Pending())
}

func TestTickerScheduler(t *testing.T) {
	fb := &fakeBackend{kind: backend.Canvas}
	ticker := NewTicker(200)
	defer ticker.Close()
	s, _ := newSession(t, fb, ticker, func(c *Config) { c.Clock = nil })
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool {
		n, _ := fb.count()
		return n >= 5
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after, _ := fb.count()
	time.Sleep(30 * time.Millisecond)
	final, _ := fb.count()
	assert.Equal(t, after, final)
}

func TestRequestExit(t *testing.T) {
	exited := false
	var sched Manual
	s, _ := newSession(t, &fakeBackend{kind: backend.Canvas}, &sched, func(c *Config) {
		c.OnExit = func() { exited = true }
	})
	require.NoError(t, s.Start(context.Background()))
	s.RequestExit()
	assert.True(t, exited)
	assert.Equal(t, Ended, s.State())
	assert.False(t, sched.Step())
}
