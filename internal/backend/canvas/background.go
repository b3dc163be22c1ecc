package canvas

import (
	"image"
	"image/draw"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"viz-engine/internal/math3d"
)

// Background supplies the opaque image each frame is composited over.
type Background interface {
	// Frame returns an image of exactly size. Callers must not modify it.
	Frame(size image.Point) *image.RGBA
}

// Feed provides the most recent camera frame, or nil before the first one arrives.
type Feed interface {
	Latest() image.Image
}

// Gradient is the synthetic background: a vertical blend from Top to Bottom.
type Gradient struct {
	Top, Bottom math3d.Color

	mu    sync.Mutex
	cache *image.RGBA
}

// NewGradient returns the default dark synthetic backdrop.
func NewGradient() *Gradient {
	return &Gradient{Top: math3d.Hex("#101a2e"), Bottom: math3d.Hex("#02040a")}
}

func (g *Gradient) Frame(size image.Point) *image.RGBA {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache != nil && g.cache.Bounds().Size() == size {
		return g.cache
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	for y := 0; y < size.Y; y++ {
		t := float32(0)
		if size.Y > 1 {
			t = float32(y) / float32(size.Y-1)
		}
		c := g.Top.Mix(g.Bottom, t).NRGBA()
		c.A = 255
		draw.Draw(img, image.Rect(0, y, size.X, y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}
	g.cache = img
	return img
}

// FeedBackground scales the latest feed frame to the surface, falling back to Fallback
// until a frame is available.
type FeedBackground struct {
	Feed     Feed
	Fallback Background
}

func (b FeedBackground) Frame(size image.Point) *image.RGBA {
	var src image.Image
	if b.Feed != nil {
		src = b.Feed.Latest()
	}
	if src == nil {
		if b.Fallback == nil {
			return image.NewRGBA(image.Rectangle{Max: size})
		}
		return b.Fallback.Frame(size)
	}
	return cover(src, size)
}

// cover scales src to fill size, cropping the overflowing dimension around the center.
func cover(src image.Image, size image.Point) *image.RGBA {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return image.NewRGBA(image.Rectangle{Max: size})
	}
	sx := float64(size.X) / float64(sb.Dx())
	sy := float64(size.Y) / float64(sb.Dy())
	s := max(sx, sy)
	w, h := int(float64(sb.Dx())*s+0.5), int(float64(sb.Dy())*s+0.5)
	w, h = max(w, size.X), max(h, size.Y)
	scaled := transform.Resize(src, w, h, transform.Linear)
	off := image.Pt((w-size.X)/2, (h-size.Y)/2)
	out := transform.Crop(scaled, image.Rectangle{Min: off, Max: off.Add(size)})
	out.Rect = out.Rect.Sub(off)
	return out
}

// StillFeed is a Feed that always returns the same image, e.g. a photo standing in for
// the camera.
type StillFeed struct {
	Image image.Image
}

func (s StillFeed) Latest() image.Image { return s.Image }

// OpenStill loads an image file as a StillFeed.
func OpenStill(path string) (StillFeed, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return StillFeed{}, err
	}
	return StillFeed{Image: img}, nil
}
