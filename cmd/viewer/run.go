package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"viz-engine/internal/backend"
	"viz-engine/internal/backend/canvas"
	"viz-engine/internal/backend/pipeline"
	"viz-engine/internal/backend/scenemarkup"
	"viz-engine/internal/camera"
	"viz-engine/internal/commands"
	"viz-engine/internal/compositor"
	"viz-engine/internal/debug"
	"viz-engine/internal/download"
	"viz-engine/internal/engineconfig"
	"viz-engine/internal/geometry"
	"viz-engine/internal/graphics"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
	"viz-engine/internal/session"
	"viz-engine/internal/terminal"
)

func newRunCmd() *cobra.Command {
	var (
		subject     string
		backendName string
		fps         int
		showFPS     bool
	)
	cmd := &cobra.Command{
		Use:   "run [concept]",
		Short: "Show a concept interactively",
		Long: `Show a concept interactively.

The canvas back end draws in this terminal. The pipeline back end opens a window and
falls back to the canvas inside it when the GPU path cannot start.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, fixes, err := loadPrefs(cmd, func(p *engineconfig.Prefs) {
				f := cmd.Flags()
				if len(args) == 1 {
					p.Concept = args[0]
				}
				if f.Changed("subject") {
					p.Subject = subject
				}
				if f.Changed("backend") {
					p.Backend = backendName
				}
				if f.Changed("fps") {
					p.FPS = fps
				}
				if f.Changed("show-fps") {
					p.ShowFPS = showFPS
				}
			})
			if err != nil {
				return err
			}
			log := openLog(p, fixes)
			defer log.Close()
			return run(cmd.Context(), p, log)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject label shown beside the title")
	cmd.Flags().StringVar(&backendName, "backend", "canvas", "Render back end: canvas, markup or pipeline")
	cmd.Flags().IntVar(&fps, "fps", 60, "Target frames per second")
	cmd.Flags().BoolVar(&showFPS, "show-fps", false, "Show frame statistics")
	return cmd
}

func run(ctx context.Context, p engineconfig.Prefs, log *logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lib := geometry.NewLibrary()
	stats := debug.New(nil)
	stats.ShowFPS, stats.ShowMemAlloc = p.ShowFPS, p.ShowMemAlloc

	feed := &backgroundFeed{}
	canvasOpts, err := canvasOptions(p, feed, log)
	if err != nil {
		return err
	}
	kind, err := backend.ParseKind(p.Backend)
	if err != nil {
		return err
	}
	fallbackKind, err := backend.ParseKind(p.FallbackBackend)
	if err != nil {
		return err
	}

	desc := lib.Describe(p.Concept)
	cfg := session.Config{
		Concept:        p.Concept,
		Subject:        geometry.DisplayName(p.Subject),
		Library:        lib,
		Compositor:     newCompositor(p, log),
		Backend:        newBackend(kind, p, canvasOpts, log),
		Fallback:       newBackend(fallbackKind, p, canvasOpts, log),
		Camera:         camera.NewController(homeCamera(p, desc), p.FPS),
		FPS:            p.FPS,
		Prerequisite:   feed.loader(p.Background, log),
		AcquireTimeout: p.AcquireTimeout,
		OnExit:         cancel,
		Log:            log,
		Stats:          stats,
	}
	if kind == backend.Pipeline {
		return runWindow(ctx, cfg, p, log)
	}
	return runTerminal(ctx, cfg, log)
}

func runTerminal(ctx context.Context, cfg session.Config, log *logger.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	term := terminal.New(screen, log, cfg.Stats)
	ticker := session.NewTicker(cfg.FPS)
	defer ticker.Close()
	cfg.Surface, cfg.Scheduler = term, ticker
	cfg.OnStatus = func(st session.Status, err error) {
		if st == session.StatusFallbackActive {
			fmt.Fprintf(term, "3D back end unavailable, drawing with the canvas: %v\n", err)
		}
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	term.Attach(sess, commands.Viewer(sess, cfg.Library, term))
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Stop()

	if err := term.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWindow(ctx context.Context, cfg session.Config, p engineconfig.Prefs, log *logger.Logger) error {
	win := graphics.New(graphics.Options{
		Width:  p.Width,
		Height: p.Height,
		Title:  "Concept Viewer",
		FPS:    p.FPS,
		Stats:  cfg.Stats,
		Log:    log,
	})
	if err := win.Open(); err != nil {
		return err
	}
	cfg.Surface, cfg.Scheduler = win, win

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	win.Attach(sess)
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Stop()

	if err := win.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newCompositor(p engineconfig.Prefs, log *logger.Logger) *compositor.Compositor {
	return &compositor.Compositor{
		Projection: compositor.Projection(p.Projection),
		FOV:        p.FOVDegrees * math3d.DegToRad,
		Log:        log,
	}
}

func newBackend(kind backend.Kind, p engineconfig.Prefs, canvasOpts canvas.Options, log *logger.Logger) backend.Backend {
	switch kind {
	case backend.Markup:
		return scenemarkup.New(scenemarkup.Options{Log: log})
	case backend.Pipeline:
		return pipeline.New(pipeline.Options{SpinPeriodMs: p.SpinPeriodMs, Log: log})
	}
	return canvas.New(canvasOpts)
}

func canvasOptions(p engineconfig.Prefs, feed canvas.Feed, log *logger.Logger) (canvas.Options, error) {
	opts := canvas.Options{
		Background: canvas.FeedBackground{Feed: feed, Fallback: canvas.NewGradient()},
		Font:       p.PanelFont,
		Log:        log,
	}
	if p.PanelCSS != "" {
		src, err := os.ReadFile(p.PanelCSS)
		if err != nil {
			return opts, fmt.Errorf("panel stylesheet: %w", err)
		}
		if opts.Stylesheet, err = canvas.ParseCSS(string(src)); err != nil {
			return opts, fmt.Errorf("panel stylesheet %s: %w", p.PanelCSS, err)
		}
	}
	return opts, nil
}

// homeCamera is the configured starting camera, at the concept's suggested distance unless
// one is configured.
func homeCamera(p engineconfig.Prefs, desc geometry.Description) camera.State {
	d := p.Camera.Distance
	if d <= 0 {
		d = desc.SuggestedCameraDistance
	}
	s := camera.Default(d)
	if p.Camera.YawDeg != 0 {
		s.Yaw = p.Camera.YawDeg * math3d.DegToRad
	}
	if p.Camera.PitchDeg != 0 {
		s.Pitch = p.Camera.PitchDeg * math3d.DegToRad
	}
	s.Clamp()
	return s
}

// backgroundFeed is the photo standing in for the camera feed. It is empty until its
// loader, run as the session prerequisite, succeeds.
type backgroundFeed struct {
	mu  sync.Mutex
	img image.Image
}

func (f *backgroundFeed) Latest() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.img
}

// loader returns the prerequisite that loads source, or nil for the synthetic background.
func (f *backgroundFeed) loader(source string, log *logger.Logger) func(context.Context) error {
	if source == "" || source == "synthetic" {
		return nil
	}
	return func(ctx context.Context) error {
		path := source
		if download.IsURL(source) {
			var err error
			if path, err = download.Image(ctx, nil, source, ""); err != nil {
				return err
			}
		}
		still, err := canvas.OpenStill(path)
		if err != nil {
			return fmt.Errorf("background %s: %w", path, err)
		}
		f.mu.Lock()
		f.img = still.Image
		f.mu.Unlock()
		log.Info("background loaded", "source", source, "size", still.Image.Bounds().Size().String())
		return nil
	}
}
