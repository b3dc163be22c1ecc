// Package backend defines the contract shared by the render back ends and the surfaces
// they draw onto.
package backend

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"golang.org/x/net/html"

	"viz-engine/internal/compositor"
)

// Kind names a back end variant.
type Kind string

const (
	// Canvas projects to 2D and rasterizes in software.
	Canvas Kind = "canvas"
	// Markup emits a declarative 3D scene whose runtime owns the animation.
	Markup Kind = "markup"
	// Pipeline builds vertex buffers and draws them with a shader.
	Pipeline Kind = "pipeline"
)

// Kinds lists every back end.
var Kinds = []Kind{Canvas, Markup, Pipeline}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("backend: unknown kind %q", s)
}

// Backend draws frames onto the surface it was initialized with. Init is called once before
// the first Draw; Close releases resources and may be called after a failed Init.
type Backend interface {
	Kind() Kind
	Init(s Surface) error
	Draw(f compositor.Frame, size image.Point) error
	Close() error
}

// Surface is an abstract drawable target supplied by the host.
type Surface interface {
	Size() image.Point
}

// ImageSurface receives finished raster frames.
type ImageSurface interface {
	Surface
	Present(img *image.RGBA) error
}

// MarkupSurface is an attach point for a declarative scene.
type MarkupSurface interface {
	Surface
	// Mount attaches the scene root, replacing any previously mounted one.
	Mount(root *html.Node) error
	// Update changes one attribute of the mounted element with the given id.
	Update(id, attr, value string) error
}

// InitError reports that a back end could not start. The session falls back to the canvas
// back end when it sees one.
type InitError struct {
	Backend Kind
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("backend: %s init: %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// SurfaceUnavailableError reports a missing or unusable surface; the session cannot start.
type SurfaceUnavailableError struct {
	Reason string
}

func (e *SurfaceUnavailableError) Error() string {
	return "backend: surface unavailable: " + e.Reason
}

// CheckSurface returns a SurfaceUnavailableError when s is nil or has no area.
func CheckSurface(s Surface) error {
	if s == nil {
		return &SurfaceUnavailableError{Reason: "no surface"}
	}
	size := s.Size()
	if size.X <= 0 || size.Y <= 0 {
		return &SurfaceUnavailableError{Reason: fmt.Sprintf("surface has no area (%dx%d)", size.X, size.Y)}
	}
	return nil
}

// IsInitError reports whether err is or wraps an InitError.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}

// Buffer is an in-memory ImageSurface keeping the last presented frame.
type Buffer struct {
	mu       sync.Mutex
	size     image.Point
	last     *image.RGBA
	presents int
}

// NewBuffer returns a buffer surface of the given size.
func NewBuffer(size image.Point) *Buffer {
	return &Buffer{size: size}
}

func (b *Buffer) Size() image.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Resize changes the reported size.
func (b *Buffer) Resize(size image.Point) {
	b.mu.Lock()
	b.size = size
	b.mu.Unlock()
}

// Present copies img.
func (b *Buffer) Present(img *image.RGBA) error {
	cp := image.NewRGBA(img.Bounds())
	draw.Draw(cp, cp.Bounds(), img, img.Bounds().Min, draw.Src)
	b.mu.Lock()
	b.last = cp
	b.presents++
	b.mu.Unlock()
	return nil
}

// Last returns the most recently presented frame, or nil.
func (b *Buffer) Last() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Presents returns how many frames were presented.
func (b *Buffer) Presents() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presents
}
