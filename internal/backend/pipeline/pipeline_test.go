package pipeline

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viz-engine/internal/backend"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

type fakeDevice struct {
	initErr  error
	vertex   string
	draws    int
	chunks   int
	last     Uniforms
	closed   bool
	vertices int
}

func (d *fakeDevice) Init(vs, fs string) error {
	d.vertex = vs
	return d.initErr
}

func (d *fakeDevice) Draw(chunks []Chunk, u Uniforms) error {
	d.draws++
	d.chunks = len(chunks)
	d.vertices = 0
	for i := range chunks {
		d.vertices += chunks[i].Vertices()
	}
	d.last = u
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeSurface struct {
	size image.Point
	dev  Device
}

func (s fakeSurface) Size() image.Point { return s.size }
func (s fakeSurface) Device() Device    { return s.dev }

func TestSphereMesh(t *testing.T) {
	m := SphereMesh(8, 12)
	assert.Len(t, m.Positions, 9*13)
	assert.Equal(t, 8*12*2, m.Triangles())
	for i, p := range m.Positions {
		assert.InDelta(t, 1, p.Len(), 1e-5)
		assert.Equal(t, p, m.Normals[i])
	}
	for _, idx := range m.Indices {
		assert.Less(t, int(idx), len(m.Positions))
	}
}

func TestCubeMesh(t *testing.T) {
	m := CubeMesh()
	assert.Len(t, m.Positions, 24)
	assert.Equal(t, 12, m.Triangles())
	for i, p := range m.Positions {
		assert.InDelta(t, 0.5, p.Dot(m.Normals[i]), 1e-6)
	}
	// Counter-clockwise winding seen from outside.
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Dot(m.Normals[m.Indices[i]]), float32(0))
	}
}

func TestBatchSplitsChunks(t *testing.T) {
	var b Batch
	sphere := SphereMesh(32, 64) // 33*65 = 2145 vertices
	const copies = 100
	for i := 0; i < copies; i++ {
		b.Add(sphere, math3d.Translate(math3d.V3(float32(i), 0, 0)), math3d.Hex("#ff0000"))
	}
	assert.Equal(t, copies*len(sphere.Positions), b.Vertices())
	assert.Equal(t, copies*sphere.Triangles(), b.Triangles())
	require.Greater(t, len(b.Chunks), 1)
	for _, ch := range b.Chunks {
		assert.LessOrEqual(t, ch.Vertices(), MaxChunkVertices)
		assert.Len(t, ch.Colors, 4*ch.Vertices())
		for _, idx := range ch.Indices {
			assert.Less(t, int(idx), ch.Vertices())
		}
	}

	chunks := len(b.Chunks)
	b.Reset()
	assert.Zero(t, b.Vertices())
	b.Add(sphere, math3d.Identity(), math3d.Hex("#00ff00"))
	assert.Len(t, b.Chunks, 1)
	assert.LessOrEqual(t, len(b.Chunks), chunks)
}

func TestBatchTransformsNormals(t *testing.T) {
	var b Batch
	b.Add(CubeMesh(), math3d.ScaleMat(math3d.V3(4, 0.5, 1)), math3d.Hex("#ffffff"))
	ch := b.Chunks[0]
	for i := 0; i < ch.Vertices(); i++ {
		n := math3d.V3(ch.Normals[3*i], ch.Normals[3*i+1], ch.Normals[3*i+2])
		assert.InDelta(t, 1, n.Len(), 1e-5)
		p := math3d.V3(ch.Positions[3*i], ch.Positions[3*i+1], ch.Positions[3*i+2])
		assert.Greater(t, p.Dot(n), float32(0))
	}
}

func TestEveryKindTessellates(t *testing.T) {
	white := math3d.Hex("#ffffff")
	d := geometry.Description{
		Concept: "kinds",
		Primitives: []geometry.Primitive{
			geometry.Sphere("sphere", math3d.Zero, 1, white),
			geometry.Point("point", math3d.V3(1, 0, 0), 0.05, white),
			geometry.Cylinder("cylinder", math3d.Zero, math3d.V3(0, 2, 0), 0.2, white),
			geometry.Line("line", math3d.Zero, math3d.V3(2, 0, 0), 0.02, white),
			geometry.Cone("cone", math3d.Zero, math3d.UnitY, 0.5, 1, white),
			geometry.Ring("ring", math3d.Zero, math3d.UnitZ, 2, 0.1, white),
			geometry.Box("box", math3d.Zero, math3d.V3(1, 2, 3), white),
		},
	}
	var c compositor.Compositor
	b := New(Options{SphereRings: 4, SphereSlices: 6})
	batch := b.Build(c.Compose(d, camera.Default(10), 0))

	sphere := (4 + 1) * (6 + 1)
	bead := 7 * 9
	cube := 24
	want := sphere + bead + cube + cube + coneSlabs*cube + ringBeads(2, 0.1)*bead + cube
	assert.Equal(t, want, batch.Vertices())
}

func TestDrawSubmitsBatch(t *testing.T) {
	dev := &fakeDevice{}
	b := New(Options{SpinPeriodMs: 4000})
	require.NoError(t, b.Init(fakeSurface{size: image.Pt(800, 600), dev: dev}))
	assert.Equal(t, VertexShader, dev.vertex)

	lib := geometry.NewLibrary()
	var c compositor.Compositor
	d := lib.Describe("dna")
	f := c.Compose(d, camera.Default(d.SuggestedCameraDistance), 1000)
	require.NoError(t, b.Draw(f, image.Pt(800, 600)))
	assert.Equal(t, 1, dev.draws)
	assert.Positive(t, dev.chunks)
	assert.Positive(t, dev.vertices)
	assert.Equal(t, f.View, dev.last.View)

	// A quarter of the turntable period turns +X onto -Z.
	got := dev.last.Model.MulDir(math3d.UnitX)
	assert.InDelta(t, 0, got.X, 1e-5)
	assert.InDelta(t, -1, got.Z, 1e-5)
	assert.InDelta(t, 1, dev.last.LightDir.Len(), 1e-5)

	require.NoError(t, b.Close())
	assert.True(t, dev.closed)
}

func TestInitFailures(t *testing.T) {
	b := New(Options{})

	err := b.Init(fakeSurface{size: image.Pt(10, 10), dev: &fakeDevice{initErr: errors.New("no GL 3.3")}})
	require.Error(t, err)
	assert.True(t, backend.IsInitError(err))
	assert.ErrorContains(t, err, "no GL 3.3")

	err = b.Init(fakeSurface{size: image.Pt(10, 10)})
	assert.True(t, backend.IsInitError(err))

	err = b.Init(backend.NewBuffer(image.Pt(10, 10)))
	assert.True(t, backend.IsInitError(err))

	err = b.Init(fakeSurface{dev: &fakeDevice{}})
	var unavailable *backend.SurfaceUnavailableError
	assert.ErrorAs(t, err, &unavailable)

	assert.Error(t, b.Draw(compositor.Frame{}, image.Pt(1, 1)))
}
