// Package graphics hosts a viewing session in a raylib window. The window is the session's
// frame scheduler, an image surface for the canvas back end and the GPU device for the
// pipeline back end.
package graphics

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"viz-engine/internal/backend/pipeline"
	"viz-engine/internal/camera"
	"viz-engine/internal/debug"
	"viz-engine/internal/logger"
)

const (
	fontSize = 20
	padding  = 8

	dragSpeed  = 0.005
	wheelZoom  = 0.1
	keyOrbit   = 0.05
	minZoomMul = 0.5
)

var hudColor = rl.NewColor(230, 230, 230, 255)

// Controls is what window input acts on; *session.Session implements it.
type Controls interface {
	Input(fn func(*camera.Controller))
	RequestExit()
}

// Options configure the window.
type Options struct {
	Width, Height int
	Title         string
	FPS           int
	Stats         *debug.Stats
	Log           *logger.Logger
}

// Window owns the raylib main loop. Everything that touches raylib, including session
// ticks, runs on the goroutine that called Open and Run.
type Window struct {
	opts Options
	log  *logger.Logger
	dev  *device

	mu      sync.Mutex
	ctl     Controls
	pending func()
	gen     uint64
	size    image.Point
	open    bool

	tex     rl.Texture2D
	texSize image.Point
}

// New returns an unopened window.
func New(opts Options) *Window {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Title == "" {
		opts.Title = "Concept Viewer"
	}
	return &Window{opts: opts, log: logger.OrDiscard(opts.Log), dev: &device{}}
}

// Open creates the window. It must be called from the main goroutine.
func (w *Window) Open() error {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.opts.Width), int32(w.opts.Height), w.opts.Title)
	if !rl.IsWindowReady() {
		return errors.New("graphics: window could not be created")
	}
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(int32(w.opts.FPS))

	w.mu.Lock()
	w.open = true
	w.size = image.Pt(rl.GetScreenWidth(), rl.GetScreenHeight())
	w.mu.Unlock()
	w.log.Info("window opened", "width", w.size.X, "height", w.size.Y)
	return nil
}

// Attach connects mouse and keyboard input to ctl.
func (w *Window) Attach(ctl Controls) {
	w.mu.Lock()
	w.ctl = ctl
	w.mu.Unlock()
}

// Size implements backend.Surface. It is zero until the window is open.
func (w *Window) Size() image.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Device implements pipeline.Surface.
func (w *Window) Device() pipeline.Device {
	return w.dev
}

// RequestFrame implements session.Scheduler: fn runs inside the next BeginDrawing/EndDrawing pair.
func (w *Window) RequestFrame(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	gen := w.gen
	w.pending = fn
	return func() {
		w.mu.Lock()
		if w.gen == gen {
			w.pending = nil
		}
		w.mu.Unlock()
	}
}

// Present implements backend.ImageSurface by streaming img into a texture stretched over the window.
func (w *Window) Present(img *image.RGBA) error {
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if size != w.texSize {
		if w.texSize != (image.Point{}) {
			rl.UnloadTexture(w.tex)
		}
		rlImg := rl.NewImageFromImage(img)
		w.tex = rl.LoadTextureFromImage(rlImg)
		rl.UnloadImage(rlImg)
		w.texSize = size
	} else {
		rl.UpdateTexture(w.tex, pixels(img))
	}
	src := rl.NewRectangle(0, 0, float32(size.X), float32(size.Y))
	dst := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	rl.DrawTexturePro(w.tex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	return nil
}

// pixels views the tightly packed rows of img as colors.
func pixels(img *image.RGBA) []color.RGBA {
	b := img.Bounds()
	out := make([]color.RGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[4*x : 4*x+4 : 4*x+4]
			out = append(out, color.RGBA{p[0], p[1], p[2], p[3]})
		}
	}
	return out
}

// Run drives frames until the window is closed or ctx is done, then asks the session to exit.
func (w *Window) Run(ctx context.Context) error {
	w.mu.Lock()
	if !w.open {
		w.mu.Unlock()
		return errors.New("graphics: window not open")
	}
	w.mu.Unlock()
	defer w.close()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		w.mu.Lock()
		w.size = image.Pt(rl.GetScreenWidth(), rl.GetScreenHeight())
		fn := w.pending
		w.pending = nil
		ctl := w.ctl
		w.mu.Unlock()

		if !w.input(ctl) {
			return nil
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		if fn != nil {
			fn()
		}
		w.drawHUD()
		rl.EndDrawing()
	}
	if ctl := w.controls(); ctl != nil {
		ctl.RequestExit()
	}
	return ctx.Err()
}

func (w *Window) controls() Controls {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctl
}

// input maps mouse and keys to camera input and reports whether to keep running.
func (w *Window) input(ctl Controls) bool {
	if ctl == nil {
		return true
	}
	if rl.IsKeyPressed(rl.KeyEscape) || rl.IsKeyPressed(rl.KeyQ) {
		ctl.RequestExit()
		return false
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			ctl.Input(func(c *camera.Controller) { c.Drag(-d.X*dragSpeed, d.Y*dragSpeed) })
		}
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			sw, sh := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
			ctl.Input(func(c *camera.Controller) { c.Pan(-d.X/sw, d.Y/sh) })
		}
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		f := max(1-wheel*wheelZoom, minZoomMul)
		ctl.Input(func(c *camera.Controller) { c.ZoomBy(f) })
	}
	var dYaw, dPitch float32
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		dYaw -= keyOrbit
	}
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		dYaw += keyOrbit
	}
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		dPitch += keyOrbit
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		dPitch -= keyOrbit
	}
	if dYaw != 0 || dPitch != 0 {
		ctl.Input(func(c *camera.Controller) { c.Nudge(dYaw, dPitch) })
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		ctl.Input(func(c *camera.Controller) { c.ZoomBy(0.8) })
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		ctl.Input(func(c *camera.Controller) { c.ZoomBy(1.25) })
	}
	if rl.IsKeyPressed(rl.KeyR) {
		ctl.Input(func(c *camera.Controller) { c.Reset() })
	}
	return true
}

func (w *Window) drawHUD() {
	if w.opts.Stats == nil {
		return
	}
	if text := w.opts.Stats.Text(); text != "" {
		rl.DrawText(text, padding, int32(rl.GetScreenHeight())-fontSize-padding, fontSize, hudColor)
	}
}

func (w *Window) close() {
	if w.texSize != (image.Point{}) {
		rl.UnloadTexture(w.tex)
		w.texSize = image.Point{}
	}
	_ = w.dev.Close()
	rl.CloseWindow()
	w.mu.Lock()
	w.open = false
	w.size = image.Point{}
	w.mu.Unlock()
}
