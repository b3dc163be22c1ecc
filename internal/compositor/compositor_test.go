package compositor

import (
	"image"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viz-engine/internal/camera"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
)

func TestComposePreservesOrder(t *testing.T) {
	lib := geometry.NewLibrary()
	var c Compositor
	for _, id := range lib.Concepts() {
		d := lib.Describe(string(id))
		f := c.Compose(d, camera.Default(d.SuggestedCameraDistance), 1234.5)
		require.Len(t, f.Items, len(d.Primitives), id)
		for i, it := range f.Items {
			assert.Equal(t, i, it.Index)
			assert.Equal(t, d.Primitives[i].Group, it.Group)
			assert.Equal(t, d.Primitives[i].Kind, it.Kind)
			assert.True(t, it.Visible, "%s item %d", id, i)
			assert.NoError(t, it.Err)
		}
		assert.Equal(t, id, f.Concept)
	}
}

func TestComposeViewTransform(t *testing.T) {
	d := geometry.Description{
		Concept: "sample",
		Primitives: []geometry.Primitive{
			geometry.Sphere("a", math3d.Zero, 1, math3d.Hex("#fff")),
			geometry.Sphere("b", math3d.V3(0, 0, 2), 1, math3d.Hex("#fff")),
		},
	}
	var c Compositor
	f := c.Compose(d, camera.State{Distance: 10}, 0)
	assert.InDelta(t, -10, f.Items[0].View.Z, 1e-5)
	assert.InDelta(t, -8, f.Items[1].View.Z, 1e-5)

	turned := c.Compose(d, camera.State{Distance: 10, Yaw: math32.Pi / 2}, 0)
	// Looking from +X, the +Z offset moves to screen left.
	assert.InDelta(t, -2, turned.Items[1].View.X, 1e-5)
}

func TestComposeIsolatesFaults(t *testing.T) {
	bad := geometry.Sphere("bad", math3d.V3(math32.NaN(), 0, 0), 1, math3d.Hex("#fff"))
	d := geometry.Description{
		Concept: "faulty",
		Primitives: []geometry.Primitive{
			geometry.Sphere("first", math3d.Zero, 1, math3d.Hex("#fff")),
			bad,
			geometry.Sphere("last", math3d.UnitX, 1, math3d.Hex("#fff")),
		},
	}
	log := logger.Discard()
	c := Compositor{Log: log}
	for i := 0; i < 3; i++ {
		f := c.Compose(d, camera.Default(5), float64(i))
		require.Len(t, f.Items, 3)
		assert.True(t, f.Items[0].Visible)
		assert.False(t, f.Items[1].Visible)
		assert.Error(t, f.Items[1].Err)
		assert.True(t, f.Items[2].Visible)

		proj := f.Project(image.Pt(200, 100))
		assert.False(t, proj[1].Visible)
		assert.True(t, proj[2].Visible)
	}
	assert.Len(t, log.Lines(), 1)
}

func TestComposeAppliesSpin(t *testing.T) {
	spin := geometry.Rotate(math3d.UnitY, 4000, 0)
	d := geometry.Description{
		Spin:       &spin,
		Primitives: []geometry.Primitive{geometry.Sphere("a", math3d.UnitX, 0.1, math3d.Hex("#fff"))},
	}
	var c Compositor
	f := c.Compose(d, camera.Default(5), 1000)
	assert.InDelta(t, 0, f.Items[0].World.X, 1e-5)
	assert.InDelta(t, -1, f.Items[0].World.Z, 1e-5)
}

func TestWeakPerspectiveZoomDoublesSizes(t *testing.T) {
	d := geometry.NewLibrary().Describe(string(geometry.AtomicStructure))
	c := Compositor{Projection: WeakPerspective}
	size := image.Pt(640, 480)
	far := camera.Default(10)
	near := far
	near.Zoom(0.5)

	a := c.Compose(d, far, 777).Project(size)
	b := c.Compose(d, near, 777).Project(size)
	require.Len(t, b, len(a))
	cx, cy := float32(size.X)/2, float32(size.Y)/2
	for i := range a {
		require.True(t, a[i].Visible)
		assert.InDelta(t, 2*a[i].PixelsPerUnit, b[i].PixelsPerUnit, 1e-4)
		assert.InDelta(t, 2*(a[i].Center.X-cx), b[i].Center.X-cx, 1e-3)
		assert.InDelta(t, 2*(a[i].Center.Y-cy), b[i].Center.Y-cy, 1e-3)
		if a[i].Radius > 0 {
			assert.InDelta(t, 2, b[i].Radius/a[i].Radius, 1e-4, "item %d", i)
		}
	}
}

func TestPerspectiveShrinksWithDepth(t *testing.T) {
	d := geometry.Description{Primitives: []geometry.Primitive{
		geometry.Sphere("front", math3d.V3(0, 0, 2), 1, math3d.Hex("#fff")),
		geometry.Sphere("back", math3d.V3(0, 0, -2), 1, math3d.Hex("#fff")),
		geometry.Sphere("behind", math3d.V3(0, 0, 20), 1, math3d.Hex("#fff")),
	}}
	var c Compositor
	p := c.Compose(d, camera.State{Distance: 10}, 0).Project(image.Pt(100, 100))
	assert.Greater(t, p[0].Radius, p[1].Radius)
	assert.InDelta(t, 50, p[0].Center.X, 1e-4)
	assert.InDelta(t, 50, p[0].Center.Y, 1e-4)
	assert.False(t, p[2].Visible)
}

func TestProjectShapes(t *testing.T) {
	d := geometry.Description{Primitives: []geometry.Primitive{
		geometry.Cylinder("rod", math3d.V3(-1, 0, 0), math3d.V3(1, 0, 0), 0.1, math3d.Hex("#fff")),
		geometry.Ring("ring", math3d.Zero, math3d.UnitZ, 1, 0.05, math3d.Hex("#fff")),
		geometry.Ring("edge", math3d.Zero, math3d.UnitY, 1, 0.05, math3d.Hex("#fff")),
		geometry.Box("box", math3d.Zero, math3d.V3(2, 2, 2), math3d.Hex("#fff")),
	}}
	c := Compositor{Projection: WeakPerspective}
	p := c.Compose(d, camera.State{Distance: 10}, 0).Project(image.Pt(200, 200))

	rod := p[0]
	assert.Less(t, rod.A.X, rod.B.X)
	assert.InDelta(t, rod.A.Y, rod.B.Y, 1e-4)
	assert.InDelta(t, 2*rod.PixelsPerUnit, rod.B.X-rod.A.X, 1e-3)

	facing := p[1]
	assert.InDelta(t, facing.Radius, facing.Minor, 1e-4)
	edge := p[2]
	assert.InDelta(t, 0, edge.Minor, 1e-4)
	assert.Greater(t, edge.Radius, float32(0))

	box := p[3]
	for _, corner := range box.Corners {
		assert.InDelta(t, box.PixelsPerUnit, math32.Abs(corner.X-box.Center.X), 1e-3)
	}
}
