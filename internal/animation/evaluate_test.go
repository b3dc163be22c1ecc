package animation

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

const tol = 1e-4

// angleDiff returns the smallest absolute difference between two angles.
func angleDiff(a, b float32) float32 {
	d := math3d.WrapAngle(a - b)
	return math32.Min(d, math3d.Tau-d)
}

var sampleTimes = []float64{0, 1, 16.7, 250, 999.9, 1234.5, 3000, 4321, 12345.6, 59999, 600000.25}

func allPrimitives() []geometry.Primitive {
	lib := geometry.NewLibrary()
	var out []geometry.Primitive
	for _, id := range lib.Concepts() {
		out = append(out, lib.Describe(string(id)).Primitives...)
	}
	return out
}

func TestRotatePeriodicity(t *testing.T) {
	for _, p := range allPrimitives() {
		a := p.Animation
		if a == nil || (a.Rule != geometry.RuleRotate && a.Rule != geometry.RuleOrbit) {
			continue
		}
		for _, ts := range sampleTimes {
			now := Evaluate(p, ts)
			later := Evaluate(p, ts+float64(a.PeriodMs))
			assert.LessOrEqual(t, angleDiff(now.Angle, later.Angle), float32(tol), "%s at %v", p.Group, ts)
			assert.InDelta(t, now.Position.X, later.Position.X, 1e-3)
			assert.InDelta(t, now.Position.Y, later.Position.Y, 1e-3)
			assert.InDelta(t, now.Position.Z, later.Position.Z, 1e-3)
		}
	}
}

func TestRotateAngle(t *testing.T) {
	p := geometry.Box("b", math3d.Zero, math3d.V3(1, 1, 1), math3d.Hex("#fff")).
		With(geometry.Rotate(math3d.UnitY, 4000, 0))
	assert.InDelta(t, 0, Evaluate(p, 0).Angle, tol)
	assert.InDelta(t, math32.Pi/2, Evaluate(p, 1000).Angle, tol)
	assert.InDelta(t, math32.Pi, Evaluate(p, 2000).Angle, tol)
	assert.InDelta(t, 0, Evaluate(p, 4000).Angle, tol)

	withPhase := p.With(geometry.Rotate(math3d.UnitY, 4000, math32.Pi/2))
	assert.InDelta(t, math32.Pi, Evaluate(withPhase, 1000).Angle, tol)
}

func TestRotateAboutPivot(t *testing.T) {
	pivot := math3d.V3(0, 1, 0)
	p := geometry.Sphere("bob", math3d.V3(0, -1, 0), 0.2, math3d.Hex("#fff")).
		With(geometry.RotateAbout(math3d.UnitZ, pivot, 4000, 0))
	pose := Evaluate(p, 1000)
	// A quarter turn about +Z through (0,1,0) carries (0,-1,0) to (2,1,0).
	assert.InDelta(t, 2, pose.Position.X, tol)
	assert.InDelta(t, 1, pose.Position.Y, tol)
}

func TestPulseBoundedness(t *testing.T) {
	checked := 0
	for _, p := range allPrimitives() {
		a := p.Animation
		if a == nil {
			continue
		}
		base := p.Color.Opacity()
		for i := 0; i <= 400; i++ {
			ts := float64(i) * float64(a.PeriodMs) / 97
			pose := Evaluate(p, ts)
			switch a.Rule {
			case geometry.RuleScale:
				checked++
				lo, hi := math32.Min(1, 1+a.Amplitude), math32.Max(1, 1+a.Amplitude)
				assert.GreaterOrEqual(t, pose.Scale, lo-tol)
				assert.LessOrEqual(t, pose.Scale, hi+tol)
			case geometry.RuleFade:
				checked++
				lo, hi := math32.Min(base, base+a.Amplitude), math32.Max(base, base+a.Amplitude)
				assert.GreaterOrEqual(t, pose.Opacity, math32.Max(0, lo)-tol)
				assert.LessOrEqual(t, pose.Opacity, math32.Min(1, hi)+tol)
			case geometry.RuleOscillate:
				checked++
				assert.LessOrEqual(t, pose.Offset.Len(), math32.Abs(a.Amplitude)+tol)
			case geometry.RuleSwing:
				checked++
				assert.LessOrEqual(t, math32.Abs(pose.Angle), math32.Abs(a.Amplitude)+tol)
			}
		}
	}
	assert.Greater(t, checked, 0)
}

func TestWaveAlternates(t *testing.T) {
	for _, easing := range []geometry.Easing{geometry.EaseSine, geometry.EaseLinear} {
		a := geometry.Animation{Rule: geometry.RuleScale, Amplitude: 1, PeriodMs: 1000, Easing: easing}
		assert.InDelta(t, 0, Wave(a, 0), tol, easing)
		assert.InDelta(t, 1, Wave(a, 500), tol, easing)
		assert.InDelta(t, 0, Wave(a, 1000), tol, easing)
		// Reverses toward the start rather than snapping: symmetric about the half period.
		for _, dt := range []float64{50, 125, 333, 499} {
			assert.InDelta(t, Wave(a, 500-dt), Wave(a, 500+dt), tol, easing)
		}
		// Continuous across the period boundary.
		assert.InDelta(t, Wave(a, 999.999), Wave(a, 1000.001), 1e-3, easing)
	}

	linear := geometry.Animation{PeriodMs: 1000, Easing: geometry.EaseLinear}
	assert.InDelta(t, 0.5, Wave(linear, 250), tol)
	sine := geometry.Animation{PeriodMs: 1000}
	assert.InDelta(t, 0.5, Wave(sine, 250), tol)
	shifted := geometry.Animation{PeriodMs: 1000, Phase: math32.Pi}
	assert.InDelta(t, 1, Wave(shifted, 0), tol)
}

func TestOrbitFollowsBasis(t *testing.T) {
	p := geometry.Point("e", math3d.V3(1, 0, 0), 0.1, math3d.Hex("#fff")).
		With(geometry.Orbit(math3d.UnitY, 2, 1000, 0))
	start := Evaluate(p, 0)
	assert.InDelta(t, 3, start.Position.X, tol)
	quarter := Evaluate(p, 250)
	assert.InDelta(t, 1, quarter.Position.X, tol)
	assert.InDelta(t, -2, quarter.Position.Z, tol)
	assert.InDelta(t, 2, quarter.Offset.Len(), tol)
}

func TestAtomicInnermostElectronReturns(t *testing.T) {
	d := geometry.NewLibrary().Describe(string(geometry.AtomicStructure))
	var electron *geometry.Primitive
	for i := range d.Primitives {
		p := &d.Primitives[i]
		if p.Group == "orbit-1" && p.Animation != nil && p.Animation.Rule == geometry.RuleOrbit {
			electron = p
			break
		}
	}
	require.NotNil(t, electron)
	period := float64(electron.Animation.PeriodMs)

	start := Evaluate(*electron, 0)
	half := Evaluate(*electron, period/2)
	end := Evaluate(*electron, period)
	assert.LessOrEqual(t, angleDiff(start.Angle, end.Angle), float32(tol))
	assert.InDelta(t, math32.Pi, angleDiff(start.Angle, half.Angle), tol)
	assert.InDelta(t, start.Position.X, end.Position.X, 1e-3)
	assert.InDelta(t, start.Position.Z, end.Position.Z, 1e-3)
}

func TestNoAnimationIsRest(t *testing.T) {
	p := geometry.Sphere("s", math3d.V3(1, 2, 3), 1, math3d.Hex("#ff000080"))
	pose := Evaluate(p, 5000)
	assert.Equal(t, Rest(p), pose)
	assert.InDelta(t, 128.0/255, pose.Opacity, 1e-6)

	zeroPeriod := p.With(geometry.Animation{Rule: geometry.RuleRotate})
	assert.Equal(t, Rest(p), Evaluate(zeroPeriod, 5000))
}

func TestFadeDown(t *testing.T) {
	p := geometry.Point("lp", math3d.Zero, 0.1, math3d.Hex("#ffffffff")).With(geometry.Fade(-0.6, 1000, 0))
	assert.InDelta(t, 1, Evaluate(p, 0).Opacity, tol)
	assert.InDelta(t, 0.4, Evaluate(p, 500).Opacity, tol)
}

func TestModelMatrix(t *testing.T) {
	d := geometry.NewLibrary().Describe(string(geometry.DNADoubleHelix))
	require.NotNil(t, d.Spin)
	m := ModelMatrix(d, float64(d.Spin.PeriodMs)/4)
	got := m.MulPoint(math3d.UnitX)
	assert.InDelta(t, 0, got.X, tol)
	assert.InDelta(t, -1, got.Z, tol)

	none := geometry.NewLibrary().Describe(string(geometry.AtomicStructure))
	assert.Equal(t, math3d.Identity(), ModelMatrix(none, 1234))
}

func TestClocks(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock(func() time.Time { return now })
	assert.Equal(t, 0.0, c.ElapsedMs())
	now = now.Add(1500 * time.Millisecond)
	assert.Equal(t, 1500.0, c.ElapsedMs())
	c.Reset()
	assert.Equal(t, 0.0, c.ElapsedMs())

	var m ManualClock
	m.Advance(16 * time.Millisecond)
	m.Advance(4 * time.Millisecond)
	assert.Equal(t, 20.0, m.ElapsedMs())
	m.Set(3)
	assert.Equal(t, 3.0, m.ElapsedMs())
}
