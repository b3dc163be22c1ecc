// Package scenemarkup is the declarative back end: it emits an A-Frame entity tree once per
// concept, attaching every animation rule as a looping animation__* directive, and afterwards
// only pushes camera changes. The scene runtime owns all per-frame interpolation.
package scenemarkup

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"golang.org/x/net/html"

	"viz-engine/internal/backend"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
)

// RuntimeURL is the scene runtime loaded by rendered documents.
const RuntimeURL = "https://aframe.io/releases/1.6.0/aframe.min.js"

// Options configure a markup back end.
type Options struct {
	Background  math3d.Color
	Transparent bool
	Log         *logger.Logger
}

// Backend implements backend.Backend by emitting scene markup.
type Backend struct {
	opts    Options
	surface backend.MarkupSurface
	log     *logger.Logger

	mounted bool
	concept geometry.ConceptID
	cam     camera.State
}

// New returns an uninitialized markup back end.
func New(opts Options) *Backend {
	if opts.Background == (math3d.Color{}) {
		opts.Background = math3d.Hex("#02040a")
	}
	return &Backend{opts: opts, log: logger.OrDiscard(opts.Log)}
}

func (b *Backend) Kind() backend.Kind { return backend.Markup }

// Init binds a surface that can host a markup tree.
func (b *Backend) Init(s backend.Surface) error {
	if err := backend.CheckSurface(s); err != nil {
		return err
	}
	m, ok := s.(backend.MarkupSurface)
	if !ok {
		return &backend.InitError{Backend: backend.Markup, Err: fmt.Errorf("surface %T cannot host markup", s)}
	}
	b.surface = m
	return nil
}

// Draw mounts a new scene when the concept changed and otherwise updates the camera rig
// if the camera moved. Item poses in f are ignored; the runtime animates from the mounted
// directives.
func (b *Backend) Draw(f compositor.Frame, _ image.Point) error {
	if b.surface == nil {
		return errors.New("scenemarkup: draw before init")
	}
	if f.Geometry == nil {
		return errors.New("scenemarkup: frame carries no description")
	}
	if !b.mounted || f.Concept != b.concept {
		root := Build(*f.Geometry, f.Camera, SceneOptions{
			FOV:         f.FOV,
			Background:  b.opts.Background,
			Transparent: b.opts.Transparent,
		})
		if err := b.surface.Mount(root); err != nil {
			return fmt.Errorf("scenemarkup: mount %s: %w", f.Concept, err)
		}
		b.mounted, b.concept, b.cam = true, f.Concept, f.Camera
		b.log.Debug("scene mounted", "concept", string(f.Concept), "primitives", len(f.Geometry.Primitives))
		return nil
	}
	if f.Camera == b.cam {
		return nil
	}
	pos, rot, camPos := CameraAttrs(f.Camera)
	for _, u := range []struct{ id, attr, val string }{
		{RigID, "position", pos},
		{RigID, "rotation", rot},
		{CameraID, "position", camPos},
	} {
		if err := b.surface.Update(u.id, u.attr, u.val); err != nil {
			return fmt.Errorf("scenemarkup: update %s.%s: %w", u.id, u.attr, err)
		}
	}
	b.cam = f.Camera
	return nil
}

// Close forgets the mounted scene.
func (b *Backend) Close() error {
	b.mounted = false
	b.surface = nil
	return nil
}

// Document is an in-memory MarkupSurface that can render itself as a standalone page.
type Document struct {
	mu      sync.Mutex
	size    image.Point
	title   string
	root    *html.Node
	mounts  int
	updates int
}

// NewDocument returns an empty document of the given viewport size.
func NewDocument(size image.Point, title string) *Document {
	return &Document{size: size, title: title}
}

func (d *Document) Size() image.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// Mount replaces the document's scene.
func (d *Document) Mount(root *html.Node) error {
	if root == nil {
		return errors.New("scenemarkup: nil scene root")
	}
	d.mu.Lock()
	d.root = root
	d.mounts++
	d.mu.Unlock()
	return nil
}

// Update sets attr on the element with the given id.
func (d *Document) Update(id, attr, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return errors.New("scenemarkup: update before mount")
	}
	n := Find(d.root, id)
	if n == nil {
		return fmt.Errorf("scenemarkup: no element %q", id)
	}
	setAttr(n, attr, value)
	d.updates++
	return nil
}

// Scene returns the mounted scene root, or nil.
func (d *Document) Scene() *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root
}

// Counts returns how many mounts and attribute updates the document received.
func (d *Document) Counts() (mounts, updates int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mounts, d.updates
}

// Render writes the document as an HTML page that loads the scene runtime.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		return errors.New("scenemarkup: nothing mounted")
	}
	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title>"+
		"<script src=\"%s\"></script></head>\n<body style=\"margin:0\">\n",
		html.EscapeString(d.title), RuntimeURL); err != nil {
		return err
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("scenemarkup: render: %w", err)
	}
	_, err := io.WriteString(w, "\n</body></html>\n")
	return err
}
