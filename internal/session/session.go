// Package session drives one viewing session: it waits for the host's prerequisites,
// initializes a back end (falling back to the 2D canvas when a 3D back end cannot start),
// then composes and draws one frame per scheduler callback until stopped.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"viz-engine/internal/animation"
	"viz-engine/internal/backend"
	"viz-engine/internal/backend/canvas"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/debug"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
)

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Acquiring
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring-resources"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status is reported to the host so it can show loading, fallback or error states.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusAcquiring      Status = "acquiring"
	StatusReady          Status = "ready"
	StatusFallbackActive Status = "fallback-active"
	StatusError          Status = "error"
	StatusEnded          Status = "ended"
)

var (
	// ErrNotIdle is returned by Start on a session that was already started.
	ErrNotIdle = errors.New("session: not idle")
	// ErrAcquireTimeout is returned by Start when the prerequisite does not resolve in time.
	ErrAcquireTimeout = errors.New("session: timed out waiting for prerequisites")
	// ErrStopped is returned by Start when Stop was called while acquiring.
	ErrStopped = errors.New("session: stopped before start completed")
)

// DefaultAcquireTimeout bounds the prerequisite wait when Config.AcquireTimeout is zero.
const DefaultAcquireTimeout = 10 * time.Second

// Config wires a session. Surface, Backend and Scheduler are required; everything else
// has a default.
type Config struct {
	Concept string
	// Subject is a display-only label shown beside the concept title.
	Subject    string
	Library    *geometry.Library
	Compositor *compositor.Compositor
	Backend    backend.Backend
	// Fallback replaces Backend when its Init fails with an InitError; nil uses a canvas back end.
	Fallback  backend.Backend
	Surface   backend.Surface
	Scheduler Scheduler
	Clock     animation.Clock
	// Camera is stepped once per tick; nil starts from the concept's suggested distance.
	Camera *camera.Controller
	FPS    int
	// Prerequisite is the host's readiness signal (camera permission, runtime loaded).
	// It must return once ctx is done.
	Prerequisite   func(ctx context.Context) error
	AcquireTimeout time.Duration
	OnStatus       func(Status, error)
	OnExit         func()
	Log            *logger.Logger
	Stats          *debug.Stats
}

// Session is one run of the tick loop. Its methods are safe for concurrent use, but Stop
// and RequestExit must not be called from inside a tick.
type Session struct {
	cfg Config
	log *logger.Logger

	mu            sync.Mutex
	state         State
	desc          geometry.Description
	backend       backend.Backend
	cam           *camera.Controller
	inputs        []func(*camera.Controller)
	cancelFrame   func()
	cancelAcquire context.CancelFunc
	draws         int
	drawErrors    int

	// tickMu is held for the whole of a tick so Stop can wait for one in flight.
	tickMu sync.Mutex
}

// New validates cfg and returns an idle session.
func New(cfg Config) (*Session, error) {
	if cfg.Backend == nil {
		return nil, errors.New("session: no back end")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("session: no scheduler")
	}
	if cfg.Library == nil {
		cfg.Library = geometry.NewLibrary()
	}
	if cfg.Compositor == nil {
		cfg.Compositor = &compositor.Compositor{Log: cfg.Log}
	}
	if cfg.Clock == nil {
		cfg.Clock = animation.NewClock(nil)
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	log := logger.OrDiscard(cfg.Log)
	if cfg.Fallback == nil {
		cfg.Fallback = canvas.New(canvas.Options{Log: cfg.Log})
	}
	return &Session{cfg: cfg, log: log, state: Idle}, nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Backend returns the back end in use, which is the fallback after a failed Init.
func (s *Session) Backend() backend.Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend
}

// Description returns the geometry currently shown.
func (s *Session) Description() geometry.Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc
}

// Draws returns how many frames were drawn successfully, and how many draws failed.
func (s *Session) Draws() (ok, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws, s.drawErrors
}

func (s *Session) status(st Status, err error) {
	if err != nil {
		s.log.Warn("session status", "status", string(st), "err", err)
	} else {
		s.log.Info("session status", "status", string(st))
	}
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(st, err)
	}
}

// Start acquires the prerequisites, initializes the back end and schedules the first frame.
// On any failure the session ends and the error is returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrNotIdle
	}
	s.state = Acquiring
	actx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
	s.cancelAcquire = cancel
	s.mu.Unlock()
	defer cancel()
	s.status(StatusAcquiring, nil)

	if err := backend.CheckSurface(s.cfg.Surface); err != nil {
		return s.fail(err)
	}
	if err := s.acquire(ctx, actx); err != nil {
		return s.fail(err)
	}

	desc := s.cfg.Library.Describe(s.cfg.Concept)
	cam := s.cfg.Camera
	if cam == nil {
		cam = camera.NewController(camera.Default(desc.SuggestedCameraDistance), s.cfg.FPS)
	}

	b, fellBack, err := s.initBackend()
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	if s.state != Acquiring {
		s.mu.Unlock()
		_ = b.Close()
		return ErrStopped
	}
	s.state = Active
	s.desc = desc
	s.cam = cam
	s.backend = b
	if r, ok := s.cfg.Clock.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.cancelFrame = s.cfg.Scheduler.RequestFrame(s.tick)
	s.mu.Unlock()

	s.log.Info("session started", "concept", string(desc.Concept), "backend", string(b.Kind()), "primitives", len(desc.Primitives))
	if !fellBack {
		s.status(StatusReady, nil)
	}
	return nil
}

// acquire waits for the prerequisite, bounded by actx.
func (s *Session) acquire(ctx, actx context.Context) error {
	if s.cfg.Prerequisite == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- s.cfg.Prerequisite(actx) }()
	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if s.State() != Acquiring {
			return ErrStopped
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return ErrAcquireTimeout
		}
		return fmt.Errorf("session: prerequisite: %w", err)
	case <-actx.Done():
		if s.State() != Acquiring {
			return ErrStopped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrAcquireTimeout
	}
}

// initBackend initializes the configured back end, switching to the fallback on InitError.
func (s *Session) initBackend() (backend.Backend, bool, error) {
	b := s.cfg.Backend
	err := b.Init(s.cfg.Surface)
	if err == nil {
		return b, false, nil
	}
	if !backend.IsInitError(err) {
		_ = b.Close()
		return nil, false, err
	}
	_ = b.Close()
	s.status(StatusFallbackActive, err)
	fb := s.cfg.Fallback
	if ferr := fb.Init(s.cfg.Surface); ferr != nil {
		_ = fb.Close()
		return nil, true, fmt.Errorf("session: fallback %s: %w", fb.Kind(), ferr)
	}
	return fb, true, nil
}

func (s *Session) fail(err error) error {
	if errors.Is(err, ErrStopped) {
		return err
	}
	s.mu.Lock()
	s.state = Ended
	s.mu.Unlock()
	s.status(StatusError, err)
	return err
}

// tick draws one frame and schedules the next.
func (s *Session) tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return
	}
	inputs := s.inputs
	s.inputs = nil
	desc, b, cam, subject := s.desc, s.backend, s.cam, s.cfg.Subject
	s.mu.Unlock()

	for _, fn := range inputs {
		fn(cam)
	}
	view := cam.Step()
	f := s.cfg.Compositor.Compose(desc, view, s.cfg.Clock.ElapsedMs())
	f.Subject = subject

	// A stop requested while composing wins over this frame.
	if s.State() != Active {
		return
	}
	err := b.Draw(f, s.cfg.Surface.Size())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.drawErrors++
		if s.cfg.Stats != nil {
			s.cfg.Stats.Error()
		}
		s.log.Warn("draw failed", "concept", string(f.Concept), "backend", string(b.Kind()), "err", err)
	} else {
		s.draws++
		if s.cfg.Stats != nil {
			s.cfg.Stats.Frame()
		}
	}
	if s.state == Active {
		s.cancelFrame = s.cfg.Scheduler.RequestFrame(s.tick)
	}
}

// Input queues fn to run against the camera at the start of the next tick.
func (s *Session) Input(fn func(*camera.Controller)) {
	s.mu.Lock()
	s.inputs = append(s.inputs, fn)
	s.mu.Unlock()
}

// SetConcept switches to the named concept and resets the camera to its suggested distance.
func (s *Session) SetConcept(name string) geometry.Description {
	desc := s.cfg.Library.Describe(name)
	home := camera.Default(desc.SuggestedCameraDistance)
	s.mu.Lock()
	s.desc = desc
	s.inputs = append(s.inputs, func(c *camera.Controller) {
		c.SetHome(home)
		c.Reset()
	})
	s.mu.Unlock()
	s.log.Info("concept selected", "requested", name, "concept", string(desc.Concept), "fallback", desc.Fallback)
	return desc
}

// SetSubject changes the display-only label.
func (s *Session) SetSubject(subject string) {
	s.mu.Lock()
	s.cfg.Subject = subject
	s.mu.Unlock()
}

// Stop ends the session. It cancels the scheduled frame and waits for a tick in progress,
// so no draw happens after it returns. Stopping twice is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state == Ended || s.state == Idle {
		s.state = Ended
		s.mu.Unlock()
		return
	}
	s.state = Ended
	cancelFrame, cancelAcquire, b := s.cancelFrame, s.cancelAcquire, s.backend
	s.cancelFrame = nil
	s.mu.Unlock()

	if cancelAcquire != nil {
		cancelAcquire()
	}
	if cancelFrame != nil {
		cancelFrame()
	}
	// Wait out a tick that passed its state check before we switched to Ended.
	s.tickMu.Lock()
	s.tickMu.Unlock()

	if b != nil {
		if err := b.Close(); err != nil {
			s.log.Warn("backend close", "err", err)
		}
	}
	s.status(StatusEnded, nil)
}

// RequestExit handles the host's close action: it stops the loop, then calls OnExit.
func (s *Session) RequestExit() {
	s.Stop()
	if s.cfg.OnExit != nil {
		s.cfg.OnExit()
	}
}
