// Package terminal hosts a viewing session in a text terminal. Frames are drawn with
// half-block cells, two pixels per cell, under a one-line stats bar and above a console line.
package terminal

import (
	"context"
	"image"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"viz-engine/internal/camera"
	"viz-engine/internal/commands"
	"viz-engine/internal/debug"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
)

const (
	prompt = "> "
	// Number of console reply lines drawn above the input line when the console is open.
	maxLinesOnScreen = 6
	// Rows taken by the stats bar and the console line.
	hudRows = 2

	orbitStep = 8 * math3d.DegToRad
	zoomIn    = 0.8
	zoomOut   = 1.25
)

const help = ": console  arrows/wasd orbit  +/- zoom  r reset  q quit"

var (
	hudStyle     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(40, 40, 40))
	consoleStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewRGBColor(24, 24, 24))
	historyStyle = tcell.StyleDefault.Foreground(tcell.ColorLightGray).Background(tcell.NewRGBColor(24, 24, 24))
)

// Controls is what key bindings act on; *session.Session implements it.
type Controls interface {
	Input(fn func(*camera.Controller))
	RequestExit()
}

// Terminal is an image surface backed by a tcell screen, plus the keyboard handling of the
// terminal host. The console opens with ':' and runs lines through the command registry.
type Terminal struct {
	screen tcell.Screen
	log    *logger.Logger
	stats  *debug.Stats

	mu       sync.Mutex
	ctl      Controls
	reg      *commands.Registry
	inputBuf string
	open     bool
	history  []string
	frame    *image.RGBA
	partial  string
}

// New returns a Terminal drawing on screen, which must already be initialized.
func New(screen tcell.Screen, log *logger.Logger, stats *debug.Stats) *Terminal {
	return &Terminal{screen: screen, log: logger.OrDiscard(log), stats: stats}
}

// Attach connects key bindings to ctl and console lines to reg.
func (t *Terminal) Attach(ctl Controls, reg *commands.Registry) {
	t.mu.Lock()
	t.ctl, t.reg = ctl, reg
	t.mu.Unlock()
}

// IsOpen reports whether the console is capturing keys.
func (t *Terminal) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Size is the drawable area in pixels: the screen width by twice the rows left after the HUD.
func (t *Terminal) Size() image.Point {
	w, h := t.screen.Size()
	rows := h - hudRows
	if w <= 0 || rows <= 0 {
		return image.Point{}
	}
	return image.Pt(w, 2*rows)
}

// Present draws img and the HUD, then shows the screen.
func (t *Terminal) Present(img *image.RGBA) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = img
	t.redraw()
	return nil
}

// Write appends console replies. Complete lines are kept for display and logged.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partial += string(p)
	for {
		i := strings.IndexByte(t.partial, '\n')
		if i < 0 {
			break
		}
		t.reply(t.partial[:i])
		t.partial = t.partial[i+1:]
	}
	return len(p), nil
}

// reply records one console line; mu must be held.
func (t *Terminal) reply(line string) {
	t.log.Log(line)
	t.history = append(t.history, line)
	if len(t.history) > maxLinesOnScreen {
		t.history = append(t.history[:0:0], t.history[len(t.history)-maxLinesOnScreen:]...)
	}
}

// redraw paints the last frame and the HUD; mu must be held.
func (t *Terminal) redraw() {
	w, h := t.screen.Size()
	if t.frame != nil {
		t.paint(t.frame, w, h-hudRows)
	}
	t.drawHUD(w, h)
	t.screen.Show()
}

// paint maps pixel rows 2r and 2r+1 onto cell row r+1 as a half block.
func (t *Terminal) paint(img *image.RGBA, w, rows int) {
	b := img.Bounds()
	for r := 0; r < rows; r++ {
		for x := 0; x < w; x++ {
			px := b.Min.X + x
			top := img.RGBAAt(px, b.Min.Y+2*r)
			bottom := img.RGBAAt(px, b.Min.Y+2*r+1)
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(x, r+1, '▀', nil, st)
		}
	}
}

func (t *Terminal) drawHUD(w, h int) {
	top := help
	if t.stats != nil {
		if s := t.stats.Text(); s != "" {
			top = s + "  " + help
		}
	}
	t.text(0, 0, w, top, hudStyle)

	if !t.open {
		t.text(0, h-1, w, "", consoleStyle)
		return
	}
	for i, line := range t.history {
		y := h - 1 - len(t.history) + i
		if y > 0 {
			t.text(0, y, w, line, historyStyle)
		}
	}
	t.text(0, h-1, w, prompt+t.inputBuf+"|", consoleStyle)
}

// text writes s at row y, padding with spaces to width w.
func (t *Terminal) text(x, y, w int, s string, st tcell.Style) {
	for _, r := range s {
		if x >= w {
			return
		}
		t.screen.SetContent(x, y, r, nil, st)
		x++
	}
	for ; x < w; x++ {
		t.screen.SetContent(x, y, ' ', nil, st)
	}
}

// HandleEvent applies one screen event and reports whether the host should keep running.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		return true
	case *tcell.EventKey:
		t.mu.Lock()
		if t.open {
			line, submit := t.edit(ev)
			t.redraw()
			t.mu.Unlock()
			if submit {
				t.submit(line)
			}
			return true
		}
		ctl := t.ctl
		if ev.Key() == tcell.KeyRune && ev.Rune() == ':' {
			t.open, t.inputBuf = true, ":"
			t.redraw()
			t.mu.Unlock()
			return true
		}
		t.mu.Unlock()
		return t.bind(ev, ctl)
	}
	return true
}

// edit applies a key to the console line; mu must be held. It returns the line on Enter.
func (t *Terminal) edit(ev *tcell.EventKey) (string, bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.open, t.inputBuf = false, ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.inputBuf) > 0 {
			_, size := utf8.DecodeLastRuneInString(t.inputBuf)
			t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
		}
	case tcell.KeyEnter:
		line := t.inputBuf
		t.inputBuf = ""
		if strings.TrimSpace(line) == "" {
			return "", false
		}
		return line, true
	case tcell.KeyRune:
		t.inputBuf += string(ev.Rune())
	}
	return "", false
}

func (t *Terminal) submit(line string) {
	t.mu.Lock()
	reg := t.reg
	t.mu.Unlock()

	t.log.Log(line)
	if reg == nil {
		return
	}
	ran, err := reg.ExecuteLine(line)
	if err != nil {
		_, _ = t.Write([]byte(err.Error() + "\n"))
	} else if !ran {
		_, _ = t.Write([]byte("commands start with ':' (try :help)\n"))
	}
	t.mu.Lock()
	t.redraw()
	t.mu.Unlock()
}

// bind maps navigation keys to camera input.
func (t *Terminal) bind(ev *tcell.EventKey, ctl Controls) bool {
	var fn func(*camera.Controller)
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return t.exit(ctl)
	case tcell.KeyLeft:
		fn = func(c *camera.Controller) { c.Nudge(-orbitStep, 0) }
	case tcell.KeyRight:
		fn = func(c *camera.Controller) { c.Nudge(orbitStep, 0) }
	case tcell.KeyUp:
		fn = func(c *camera.Controller) { c.Nudge(0, orbitStep) }
	case tcell.KeyDown:
		fn = func(c *camera.Controller) { c.Nudge(0, -orbitStep) }
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return t.exit(ctl)
		case 'a':
			fn = func(c *camera.Controller) { c.Nudge(-orbitStep, 0) }
		case 'd':
			fn = func(c *camera.Controller) { c.Nudge(orbitStep, 0) }
		case 'w':
			fn = func(c *camera.Controller) { c.Nudge(0, orbitStep) }
		case 's':
			fn = func(c *camera.Controller) { c.Nudge(0, -orbitStep) }
		case '+', '=':
			fn = func(c *camera.Controller) { c.ZoomBy(zoomIn) }
		case '-', '_':
			fn = func(c *camera.Controller) { c.ZoomBy(zoomOut) }
		case 'r', 'R':
			fn = func(c *camera.Controller) { c.Reset() }
		}
	}
	if fn != nil && ctl != nil {
		ctl.Input(fn)
	}
	return true
}

func (t *Terminal) exit(ctl Controls) bool {
	if ctl != nil {
		ctl.RequestExit()
	}
	return false
}

// Run reads screen events until ctx is done or the user quits.
func (t *Terminal) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go t.screen.ChannelEvents(events, quit)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !t.HandleEvent(ev) {
				return nil
			}
		}
	}
}
