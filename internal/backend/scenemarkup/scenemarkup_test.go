package scenemarkup

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"viz-engine/internal/backend"
	"viz-engine/internal/animation"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

func TestDirectiveRoundTrip(t *testing.T) {
	d := Directive{
		Property: "rotation",
		From:     []float32{0, 12.5, 0},
		To:       []float32{0, 372.5, 0},
		Dur:      4000,
		Delay:    250,
		Dir:      "alternate",
		Loop:     true,
		Easing:   EaseInOutSine,
	}
	s := d.String()
	assert.Equal(t, "property: rotation; from: 0 12.5 0; to: 0 372.5 0; dur: 4000; delay: 250; dir: alternate; loop: true; easing: easeInOutSine", s)
	back, err := ParseDirective(s)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	_, err = ParseDirective("property: scale; from: 1 1 1; to: 2")
	assert.Error(t, err)
	_, err = ParseDirective("property scale")
	assert.Error(t, err)
}

func TestDirectiveValueAt(t *testing.T) {
	d := Directive{Property: "scale", From: []float32{1}, To: []float32{2}, Dur: 1000, Dir: "alternate", Loop: true, Easing: EaseLinear}
	assert.Equal(t, 2000.0, d.Period())
	assert.InDelta(t, 1, d.ValueAt(0)[0], 1e-6)
	assert.InDelta(t, 1.5, d.ValueAt(500)[0], 1e-6)
	assert.InDelta(t, 2, d.ValueAt(999.999)[0], 1e-4)
	assert.InDelta(t, 1.5, d.ValueAt(1500)[0], 1e-6)
	assert.InDelta(t, 1.25, d.ValueAt(2250)[0], 1e-6)

	d.Delay = 300
	assert.InDelta(t, 1, d.ValueAt(200)[0], 1e-6)
	assert.InDelta(t, 1.5, d.ValueAt(800)[0], 1e-6)
}

// entityState replays the entity tree at elapsedMs the way the scene runtime would.
type entityState struct {
	world   math3d.Mat4
	scale   []float32
	opacity float32
	tag     string
	exact   bool
}

func nums(t *testing.T, n *html.Node, key string, def []float32) []float32 {
	v, ok := Attr(n, key)
	if !ok {
		return def
	}
	out, err := parseNums(v)
	require.NoError(t, err)
	return out
}

func replay(t *testing.T, root *html.Node, elapsedMs float64) map[string]entityState {
	out := make(map[string]entityState)
	var walk func(n *html.Node, parent math3d.Mat4, id string, exact bool)
	walk = func(n *html.Node, parent math3d.Mat4, id string, exact bool) {
		if n.Type != html.ElementNode {
			return
		}
		if v, ok := Attr(n, "id"); ok && strings.HasPrefix(v, "p-") {
			id = v
		}
		props := map[string][]float32{
			"position": nums(t, n, "position", []float32{0, 0, 0}),
			"rotation": nums(t, n, "rotation", []float32{0, 0, 0}),
			"scale":    nums(t, n, "scale", []float32{1, 1, 1}),
		}
		var opacity float32 = 1
		if o, ok := Attr(n, "opacity"); ok {
			v, err := parseNums(o)
			require.NoError(t, err)
			opacity = v[0]
		}
		for _, a := range n.Attr {
			if !strings.HasPrefix(a.Key, "animation__") {
				continue
			}
			d, err := ParseDirective(a.Val)
			require.NoError(t, err)
			if elapsedMs < d.Delay {
				exact = false
			}
			if d.Property == "material.opacity" {
				opacity = d.ValueAt(elapsedMs)[0]
				continue
			}
			props[d.Property] = d.ValueAt(elapsedMs)
		}
		p, r, s := props["position"], props["rotation"], props["scale"]
		local := math3d.Translate(math3d.V3(p[0], p[1], p[2])).
			Mul(math3d.Rotate(math3d.UnitY, r[1]*math3d.DegToRad)).
			Mul(math3d.Rotate(math3d.UnitX, r[0]*math3d.DegToRad)).
			Mul(math3d.Rotate(math3d.UnitZ, r[2]*math3d.DegToRad))
		world := parent.Mul(local)
		if id != "" && n.Data != "a-entity" {
			out[id] = entityState{world: world, scale: s, opacity: opacity, tag: n.Data, exact: exact}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, world, id, exact)
		}
	}
	walk(root, math3d.Identity(), "", true)
	return out
}

func TestSceneMatchesCompositor(t *testing.T) {
	lib := geometry.NewLibrary()
	var c compositor.Compositor
	for _, id := range lib.Concepts() {
		d := lib.Describe(string(id))
		cam := camera.Default(d.SuggestedCameraDistance)
		root := Build(d, cam, SceneOptions{FOV: compositor.DefaultFOV})
		for _, ms := range []float64{0, 1234.5, 20000, 47321} {
			f := c.Compose(d, cam, ms)
			got := replay(t, root, ms)
			require.Len(t, got, len(d.Primitives), "%s", id)
			for i, it := range f.Items {
				st, ok := got[PrimitiveID(i)]
				require.True(t, ok, "%s primitive %d", id, i)
				if !st.exact {
					continue
				}
				pos := st.world.MulPoint(math3d.Zero)
				assert.InDelta(t, it.World.X, pos.X, 5e-3, "%s #%d x at %v", id, i, ms)
				assert.InDelta(t, it.World.Y, pos.Y, 5e-3, "%s #%d y at %v", id, i, ms)
				assert.InDelta(t, it.World.Z, pos.Z, 5e-3, "%s #%d z at %v", id, i, ms)
				assert.InDelta(t, it.Opacity, st.opacity, 1e-2, "%s #%d opacity", id, i)

				p := d.Primitives[i]
				if p.Animation != nil && p.Animation.Rule == geometry.RuleOrbit {
					continue
				}
				local := math3d.UnitY
				if st.tag == "a-torus" {
					local = math3d.UnitZ
				}
				axis := st.world.MulDir(local)
				want := it.Orient.MulDir(math3d.UnitY)
				assert.InDelta(t, want.X, axis.X, 5e-3, "%s #%d axis", id, i)
				assert.InDelta(t, want.Y, axis.Y, 5e-3, "%s #%d axis", id, i)
				assert.InDelta(t, want.Z, axis.Z, 5e-3, "%s #%d axis", id, i)
			}
		}
	}
}

func TestScaleDirective(t *testing.T) {
	p := geometry.Sphere("core", math3d.Zero, 1, math3d.Hex("#ffffff")).With(geometry.Pulse(0.5, 2000, 0))
	d := geometry.Description{Concept: "sample", Primitives: []geometry.Primitive{p}}
	root := Build(d, camera.Default(5), SceneOptions{})
	n := Find(root, PrimitiveID(0))
	require.NotNil(t, n)
	v, ok := Attr(n, "animation__pulse")
	require.True(t, ok)
	dir, err := ParseDirective(v)
	require.NoError(t, err)
	assert.Equal(t, "scale", dir.Property)
	assert.Equal(t, []float32{1.5, 1.5, 1.5}, dir.To)
	assert.Equal(t, 1000.0, dir.Dur)
	assert.Equal(t, "alternate", dir.Dir)
	assert.InDelta(t, 1.5, dir.ValueAt(1000)[0], 1e-5)
}

func TestPhasedWaveTracksEvaluate(t *testing.T) {
	for _, phase := range []float32{0, 1, math3d.Tau / 4, math3d.Tau / 2, 4, 5.5} {
		for _, a := range []geometry.Animation{geometry.Pulse(0.5, 2000, phase), geometry.Pulse(0.5, 2000, phase).Linear()} {
			p := geometry.Sphere("core", math3d.Zero, 1, math3d.Hex("#ffffff")).With(a)
			root := Build(geometry.Description{Concept: "wave", Primitives: []geometry.Primitive{p}}, camera.Default(5), SceneOptions{})
			v, ok := Attr(Find(root, PrimitiveID(0)), "animation__pulse")
			require.True(t, ok)
			dir, err := ParseDirective(v)
			require.NoError(t, err)
			assert.LessOrEqual(t, dir.Delay, 1000.0, "phase %v waits at most half a period", phase)

			for ms := dir.Delay; ms < dir.Delay+4000; ms += 137 {
				want := 1 + 0.5*animation.Wave(a, ms)
				assert.InDelta(t, want, dir.ValueAt(ms)[0], 1e-3, "phase %v at %v", phase, ms)
			}
		}
	}
}

func TestDrawMountsOncePerConcept(t *testing.T) {
	lib := geometry.NewLibrary()
	doc := NewDocument(image.Pt(640, 480), "viewer")
	b := New(Options{})
	require.NoError(t, b.Init(doc))

	var c compositor.Compositor
	d := lib.Describe("atom")
	cam := camera.Default(d.SuggestedCameraDistance)
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Draw(c.Compose(d, cam, float64(i)*16), doc.Size()))
	}
	mounts, updates := doc.Counts()
	assert.Equal(t, 1, mounts)
	assert.Equal(t, 0, updates)

	cam.Orbit(0.3, 0.1)
	require.NoError(t, b.Draw(c.Compose(d, cam, 200), doc.Size()))
	mounts, updates = doc.Counts()
	assert.Equal(t, 1, mounts)
	assert.Equal(t, 3, updates)
	wantPos, wantRot, _ := CameraAttrs(cam)
	rig := Find(doc.Scene(), RigID)
	require.NotNil(t, rig)
	pos, _ := Attr(rig, "position")
	rot, _ := Attr(rig, "rotation")
	assert.Equal(t, wantPos, pos)
	assert.Equal(t, wantRot, rot)

	other := lib.Describe("solar system")
	require.NoError(t, b.Draw(c.Compose(other, cam, 300), doc.Size()))
	mounts, _ = doc.Counts()
	assert.Equal(t, 2, mounts)
	v, _ := Attr(doc.Scene(), "data-concept")
	assert.Equal(t, string(geometry.SolarSystem), v)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, RuntimeURL)
	assert.Contains(t, out, "<a-scene")
	assert.Contains(t, out, "animation__motion")
	require.NoError(t, b.Close())
}

func TestInitErrors(t *testing.T) {
	b := New(Options{})
	err := b.Init(backend.NewBuffer(image.Pt(10, 10)))
	assert.True(t, backend.IsInitError(err))

	err = b.Init(NewDocument(image.Point{}, ""))
	var unavailable *backend.SurfaceUnavailableError
	assert.True(t, errors.As(err, &unavailable))

	assert.Error(t, b.Draw(compositor.Frame{}, image.Pt(1, 1)))
}
