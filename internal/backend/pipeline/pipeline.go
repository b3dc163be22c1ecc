// Package pipeline is the raw 3D back end: every frame it tessellates the resolved items into
// batched vertex buffers built from two generated meshes (a UV sphere and a cube) and hands
// them with the camera matrices to a Device running a Lambert shader.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/chewxy/math32"

	"viz-engine/internal/backend"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
)

// Device executes draw calls on a GPU context owned by the host.
type Device interface {
	// Init compiles the shaders. It runs on the thread that owns the context.
	Init(vertexSrc, fragmentSrc string) error
	// Draw clears the target and issues one draw per chunk.
	Draw(chunks []Chunk, u Uniforms) error
	Close() error
}

// Surface is a host surface that can hand out a Device.
type Surface interface {
	backend.Surface
	Device() Device
}

// Uniforms are the per-frame shader inputs.
type Uniforms struct {
	Model, View, Projection math3d.Mat4
	// LightDir points from the scene towards the light.
	LightDir math3d.Vec3
	Ambient  float32
	Clear    math3d.Color
}

// Options configure a pipeline back end.
type Options struct {
	// SpinPeriodMs turns the whole model about +Y once per period; zero disables the turntable.
	SpinPeriodMs float32
	SphereRings  int
	SphereSlices int
	Background   math3d.Color
	Log          *logger.Logger
}

const (
	coneSlabs = 6
	minBeads  = 12
	maxBeads  = 64
	far       = 1000
)

var lightDir = math3d.V3(0.4, 0.8, 0.45).Normalize()

// Backend implements backend.Backend on a Device.
type Backend struct {
	opts   Options
	device Device
	log    *logger.Logger

	sphere, bead, cube Mesh
	batch              Batch
}

// New returns an uninitialized pipeline back end.
func New(opts Options) *Backend {
	if opts.SphereRings <= 0 {
		opts.SphereRings = 16
	}
	if opts.SphereSlices <= 0 {
		opts.SphereSlices = 24
	}
	if opts.Background == (math3d.Color{}) {
		opts.Background = math3d.Hex("#02040a")
	}
	return &Backend{
		opts:   opts,
		log:    logger.OrDiscard(opts.Log),
		sphere: SphereMesh(opts.SphereRings, opts.SphereSlices),
		bead:   SphereMesh(6, 8),
		cube:   CubeMesh(),
	}
}

func (b *Backend) Kind() backend.Kind { return backend.Pipeline }

// Init obtains the surface's device and compiles the shaders. Any failure is an InitError.
func (b *Backend) Init(s backend.Surface) error {
	if err := backend.CheckSurface(s); err != nil {
		return err
	}
	ps, ok := s.(Surface)
	if !ok {
		return &backend.InitError{Backend: backend.Pipeline, Err: fmt.Errorf("surface %T has no graphics device", s)}
	}
	dev := ps.Device()
	if dev == nil {
		return &backend.InitError{Backend: backend.Pipeline, Err: errors.New("graphics device unavailable")}
	}
	if err := dev.Init(VertexShader, FragmentShader); err != nil {
		return &backend.InitError{Backend: backend.Pipeline, Err: err}
	}
	b.device = dev
	return nil
}

// Draw rebuilds the batch from f and submits it.
func (b *Backend) Draw(f compositor.Frame, size image.Point) error {
	if b.device == nil {
		return errors.New("pipeline: draw before init")
	}
	b.Build(f)
	if err := b.device.Draw(b.batch.Chunks, b.Uniforms(f, size)); err != nil {
		return fmt.Errorf("pipeline: draw %s: %w", f.Concept, err)
	}
	return nil
}

// Close releases the device.
func (b *Backend) Close() error {
	if b.device == nil {
		return nil
	}
	err := b.device.Close()
	b.device = nil
	return err
}

// Uniforms returns the shader inputs for f on a viewport of size.
func (b *Backend) Uniforms(f compositor.Frame, size image.Point) Uniforms {
	aspect := float32(1)
	if size.Y > 0 {
		aspect = float32(size.X) / float32(size.Y)
	}
	model := math3d.Identity()
	if p := b.opts.SpinPeriodMs; p > 0 {
		turn := math.Mod(f.ElapsedMs, float64(p)) / float64(p)
		model = math3d.Rotate(math3d.UnitY, float32(2*math.Pi*turn))
	}
	return Uniforms{
		Model:      model,
		View:       f.View,
		Projection: math3d.Perspective(f.FOV, aspect, f.Near, far),
		LightDir:   lightDir,
		Ambient:    0.3,
		Clear:      b.opts.Background,
	}
}

// Build tessellates every visible item of f, in frame order, into the backend's batch.
func (b *Backend) Build(f compositor.Frame) *Batch {
	b.batch.Reset()
	for _, it := range f.Items {
		if it.Visible {
			b.add(it)
		}
	}
	return &b.batch
}

func (b *Backend) add(it compositor.Item) {
	place := math3d.Translate(it.World).Mul(it.Orient)
	s := it.Size
	switch it.Kind {
	case geometry.KindSphere:
		ry, rz := s.Y, s.Z
		if ry <= 0 {
			ry = s.X
		}
		if rz <= 0 {
			rz = s.X
		}
		b.batch.Add(b.sphere, place.Mul(math3d.ScaleMat(math3d.V3(s.X, ry, rz))), it.Color)
	case geometry.KindPoint:
		r := math32.Max(s.X, 0.01)
		b.batch.Add(b.bead, place.Mul(math3d.ScaleMat(math3d.V3(r, r, r))), it.Color)
	case geometry.KindCylinder, geometry.KindLine:
		d := 2 * s.X
		b.batch.Add(b.cube, place.Mul(math3d.ScaleMat(math3d.V3(d, s.Y, d))), it.Color)
	case geometry.KindCone:
		slab := s.Y / coneSlabs
		for k := 0; k < coneSlabs; k++ {
			y := -s.Y/2 + (float32(k)+0.5)*slab
			d := 2 * s.X * (1 - (float32(k)+0.5)/coneSlabs)
			xf := place.Mul(math3d.Translate(math3d.V3(0, y, 0))).Mul(math3d.ScaleMat(math3d.V3(d, slab, d)))
			b.batch.Add(b.cube, xf, it.Color)
		}
	case geometry.KindRing:
		major, tube := s.X, math32.Max(s.Y, 0.005)
		n := ringBeads(major, tube)
		for k := 0; k < n; k++ {
			sn, cs := math32.Sincos(2 * math32.Pi * float32(k) / float32(n))
			xf := place.Mul(math3d.Translate(math3d.V3(major*cs, 0, major*sn))).
				Mul(math3d.ScaleMat(math3d.V3(tube, tube, tube)))
			b.batch.Add(b.bead, xf, it.Color)
		}
	case geometry.KindBox:
		b.batch.Add(b.cube, place.Mul(math3d.ScaleMat(s)), it.Color)
	}
}

// ringBeads returns how many beads approximate a ring so neighbours overlap.
func ringBeads(major, tube float32) int {
	n := int(math32.Ceil(2 * math32.Pi * major / (1.5 * tube)))
	return min(max(n, minBeads), maxBeads)
}
