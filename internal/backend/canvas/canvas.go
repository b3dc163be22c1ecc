// Package canvas is the 2D-projection back end: it projects each item to screen space,
// rasterizes it in description order over a camera or synthetic background and overlays
// an info panel with the concept title and subject label.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/fcolor"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"viz-engine/internal/backend"
	"viz-engine/internal/compositor"
	"viz-engine/internal/fonts"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
)

// Options configure a canvas back end. Zero values select defaults.
type Options struct {
	Background Background
	// Stylesheet styles the info panel; nil uses DefaultPanelCSS.
	Stylesheet *Stylesheet
	// Font is a font file path or family name for the panel; empty uses the embedded face.
	Font string
	Log  *logger.Logger
}

// Backend implements backend.Backend by software rasterization.
type Backend struct {
	opts    Options
	style   PanelStyle
	face    font.Face
	surface backend.ImageSurface
	overlay *image.RGBA
	log     *logger.Logger
}

// New returns an uninitialized canvas back end.
func New(opts Options) *Backend {
	if opts.Background == nil {
		opts.Background = NewGradient()
	}
	if opts.Stylesheet == nil {
		opts.Stylesheet, _ = ParseCSS(DefaultPanelCSS)
	}
	return &Backend{opts: opts, log: logger.OrDiscard(opts.Log)}
}

func (b *Backend) Kind() backend.Kind { return backend.Canvas }

// Init binds the surface, which must accept raster frames, and loads the panel font.
// A missing panel font falls back to the built-in face and is not an error.
func (b *Backend) Init(s backend.Surface) error {
	if err := backend.CheckSurface(s); err != nil {
		return err
	}
	img, ok := s.(backend.ImageSurface)
	if !ok {
		return &backend.InitError{Backend: backend.Canvas, Err: fmt.Errorf("surface %T cannot present images", s)}
	}
	b.surface = img
	b.style = b.opts.Stylesheet.Panel()
	face, err := fonts.FaceOrDefault(b.opts.Font, b.style.FontSize)
	if err != nil {
		b.log.Warn("panel font unavailable, using built-in face", "font", b.opts.Font, "err", err)
	}
	b.face = face
	return nil
}

// Draw renders f at size and presents it.
func (b *Backend) Draw(f compositor.Frame, size image.Point) error {
	if b.surface == nil {
		return errors.New("canvas: draw before init")
	}
	if size.X <= 0 || size.Y <= 0 {
		return &backend.SurfaceUnavailableError{Reason: fmt.Sprintf("canvas size %dx%d", size.X, size.Y)}
	}
	out := b.Render(f, size)
	return b.surface.Present(out)
}

// Render produces the composited image for f without presenting it.
func (b *Backend) Render(f compositor.Frame, size image.Point) *image.RGBA {
	if b.overlay == nil || b.overlay.Bounds().Size() != size {
		b.overlay = image.NewRGBA(image.Rectangle{Max: size})
	} else {
		clear(b.overlay.Pix)
	}
	p := newPainter(b.overlay)
	for _, pr := range f.Project(size) {
		p.draw(pr)
	}
	out := blend.Blend(b.opts.Background.Frame(size), b.overlay, over)
	b.drawPanel(out, f)
	return out
}

// over composites premultiplied fg over bg.
func over(bg, fg fcolor.RGBAF64) fcolor.RGBAF64 {
	k := 1 - fg.A
	return fcolor.RGBAF64{
		R: fg.R + bg.R*k,
		G: fg.G + bg.G*k,
		B: fg.B + bg.B*k,
		A: fg.A + bg.A*k,
	}
}

// PanelRect returns the info panel bounds for f, at the fixed top-left offset.
func (b *Backend) PanelRect(f compositor.Frame) image.Rectangle {
	st := b.style
	lines := panelLines(f)
	w := 0
	for _, l := range lines {
		w = max(w, font.MeasureString(b.face, l).Ceil())
	}
	lh := b.lineHeight()
	origin := image.Pt(st.Left, st.Top)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w+2*st.Padding, lh*len(lines)+2*st.Padding))}
}

func (b *Backend) lineHeight() int {
	m := b.face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + 2
}

func panelLines(f compositor.Frame) []string {
	title := f.Title
	if title == "" {
		title = geometry.DisplayName(string(f.Concept))
	}
	if f.Subject == "" {
		return []string{title}
	}
	return []string{title, f.Subject}
}

func (b *Backend) drawPanel(dst *image.RGBA, f compositor.Frame) {
	st := b.style
	r := b.PanelRect(f).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(st.Background.NRGBA()), image.Point{}, draw.Over)
	if st.HasBorder {
		edge := image.NewUniform(st.Border.NRGBA())
		for _, e := range []image.Rectangle{
			{Min: r.Min, Max: image.Pt(r.Max.X, r.Min.Y+1)},
			{Min: image.Pt(r.Min.X, r.Max.Y-1), Max: r.Max},
			{Min: r.Min, Max: image.Pt(r.Min.X+1, r.Max.Y)},
			{Min: image.Pt(r.Max.X-1, r.Min.Y), Max: r.Max},
		} {
			draw.Draw(dst, e, edge, image.Point{}, draw.Over)
		}
	}
	ascent := b.face.Metrics().Ascent.Ceil()
	lh := b.lineHeight()
	for i, line := range panelLines(f) {
		c := st.TitleColor
		if i > 0 {
			c = st.SubjectColor
		}
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(c.NRGBA()),
			Face: b.face,
			Dot:  fixed.P(st.Left+st.Padding, st.Top+st.Padding+ascent+i*lh),
		}
		d.DrawString(line)
	}
}

// Close releases the panel font.
func (b *Backend) Close() error {
	if b.face != nil {
		return b.face.Close()
	}
	return nil
}
