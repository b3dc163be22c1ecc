package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// waveInterference has two pulsing point sources behind a 15×15 grid of points on the XZ
// plane. Each grid point bobs with the superposed amplitude at its distance from the sources.
func waveInterference() []Primitive {
	const (
		grid       = 15
		spacing    = 0.35
		wavelength = 1.2
		maxAmp     = 0.35
		periodMs   = 1600
	)
	s1 := math3d.V3(-1.5, 0, -3)
	s2 := math3d.V3(1.5, 0, -3)
	ps := []Primitive{
		Sphere("source-1", s1, 0.2, math3d.Hex("#ffcc00")).With(Pulse(0.25, periodMs, 0)),
		Sphere("source-2", s2, 0.2, math3d.Hex("#ffcc00")).With(Pulse(0.25, periodMs, 0)),
	}
	low, high := math3d.Hex("#1c3faa"), math3d.Hex("#7df9ff")
	half := float32(grid-1) / 2 * spacing
	for iz := 0; iz < grid; iz++ {
		for ix := 0; ix < grid; ix++ {
			p := math3d.V3(-half+float32(ix)*spacing, 0, -half+float32(iz)*spacing)
			d1 := p.Sub(s1).Len()
			d2 := p.Sub(s2).Len()
			amp := maxAmp * math32.Abs(math32.Cos(math32.Pi*(d1-d2)/wavelength))
			phase := -math3d.Tau * (d1 + d2) / (2 * wavelength)
			p.Y = -amp / 2
			ps = append(ps, Point("wave-grid", p, 0.06, low.Mix(high, amp/maxAmp)).
				With(Oscillate(math3d.UnitY, amp, periodMs, phase)))
		}
	}
	return ps
}

// magneticField is a bar magnet along X with dipole field lines r = L·sin²θ traced at two
// shells and four azimuths. Points light up in sequence from the north pole to the south.
func magneticField() []Primitive {
	const (
		pointsPerLine = 18
		halfLength    = 0.6
	)
	ps := []Primitive{
		Box("magnet-n", math3d.V3(halfLength/2, 0, 0), math3d.V3(halfLength, 0.4, 0.4), math3d.Hex("#e63946")),
		Box("magnet-s", math3d.V3(-halfLength/2, 0, 0), math3d.V3(halfLength, 0.4, 0.4), math3d.Hex("#1d70d6")),
	}
	line := 0
	for _, shellL := range []float32{1.6, 2.6} {
		theta0 := math32.Asin(math32.Sqrt(halfLength / shellL))
		for a := 0; a < 4; a++ {
			line++
			group := fmt.Sprintf("field-line-%d", line)
			sa, ca := math32.Sincos(math3d.Tau * float32(a) / 4)
			for j := 0; j < pointsPerLine; j++ {
				theta := math3d.Lerp(theta0, math32.Pi-theta0, float32(j)/(pointsPerLine-1))
				st, ct := math32.Sincos(theta)
				r := shellL * st * st
				p := math3d.V3(r*ct, r*st*ca, r*st*sa)
				ps = append(ps, Point(group, p, 0.05, math3d.Hex("#ffd16659")).
					With(Fade(0.65, 2000, -math3d.Tau*float32(j)/pointsPerLine)))
			}
		}
	}
	return ps
}

// pendulum hangs a rod and bob from a pivot and swings both ±30° about Z. A dotted arc marks
// the swing path.
func pendulum() []Primitive {
	const (
		length   = 2.4
		ampDeg   = 30
		periodMs = 2000
	)
	pivot := math3d.V3(0, 1.5, 0)
	bob := pivot.Sub(math3d.V3(0, length, 0))
	swing := Swing(math3d.UnitZ, pivot, ampDeg*math3d.DegToRad, periodMs, 0)

	ps := []Primitive{
		Box("pivot", pivot, math3d.V3(0.8, 0.12, 0.3), math3d.Hex("#8d99ae")),
	}
	for k := 0; k < 9; k++ {
		angle := math3d.Lerp(-ampDeg, ampDeg, float32(k)/8) * math3d.DegToRad
		s, c := math32.Sincos(angle)
		ps = append(ps, Point("path", pivot.Add(math3d.V3(length*s, -length*c, 0)), 0.04, math3d.Hex("#ffffff80")))
	}
	ps = append(ps,
		Cylinder("rod", pivot, bob, 0.03, math3d.Hex("#dee2e6")).With(swing),
		Sphere("bob", bob, 0.3, math3d.Hex("#ef476f")).With(swing),
	)
	return ps
}

// lightRefraction sends a white ray into a glass block; it bends inside and leaves as a fan
// of seven spectral rays, each carrying a photon that travels along it.
func lightRefraction() []Primitive {
	entry := math3d.V3(-0.8, 0.3, 0)
	exit := math3d.V3(0.8, -0.2, 0)
	white := math3d.Hex("#ffffff")
	ps := []Primitive{
		Line("incident", math3d.V3(-4, 1, 0), entry, 0.05, white),
		Point("incident", math3d.V3(-4, 1, 0), 0.07, white).
			With(Oscillate(entry.Sub(math3d.V3(-4, 1, 0)), entry.Sub(math3d.V3(-4, 1, 0)).Len(), 1800, 0).Linear()),
		Line("internal", entry, exit, 0.04, math3d.Hex("#ffffffa0")),
	}
	const rays = 7
	for k := 0; k < rays; k++ {
		group := fmt.Sprintf("ray-%d", k+1)
		angle := -(18 + 2*float32(k)) * math3d.DegToRad
		s, c := math32.Sincos(angle)
		dir := math3d.V3(c, s, 0)
		color := math3d.Spectrum(k, rays)
		ps = append(ps,
			Line(group, exit, exit.Add(dir.Scale(3.2)), 0.035, color),
			Point(group, exit, 0.07, color).With(Oscillate(dir, 3.0, 1800, 0).Linear()),
		)
	}
	ps = append(ps, Box("glass", math3d.Zero, math3d.V3(1.6, 2, 1), math3d.Hex("#a8dadc50")))
	return ps
}

// soundWaves is a speaker whose cone vibrates, wave-front rings expanding along +X with
// staggered phase, and a row of air particles oscillating longitudinally.
func soundWaves() []Primitive {
	const periodMs = 1200
	ps := []Primitive{
		Box("speaker", math3d.V3(-2.5, 0, 0), math3d.V3(0.6, 1.2, 1), math3d.Hex("#495057")),
		Cone("speaker", math3d.V3(-2.0, 0, 0), math3d.UnitX.Neg(), 0.45, 0.4, math3d.Hex("#adb5bd")).
			With(Oscillate(math3d.UnitX, 0.06, 400, 0)),
	}
	for k := 0; k < 6; k++ {
		center := math3d.V3(-1.6+0.7*float32(k), 0, 0)
		ps = append(ps, Ring(fmt.Sprintf("wavefront-%d", k+1), center, math3d.UnitX, 0.5+0.25*float32(k), 0.03, math3d.Hex("#74c0fcc0")).
			With(Pulse(0.25, periodMs, -float32(k)*math32.Pi/3)))
	}
	for k := 0; k < 12; k++ {
		p := math3d.V3(-1.6+0.35*float32(k), -1.2, 0)
		ps = append(ps, Point("air", p, 0.06, math3d.Hex("#dee2e6")).
			With(Oscillate(math3d.UnitX, 0.15, periodMs, -float32(k)*math32.Pi/6)))
	}
	return ps
}

// electricCircuit is a rectangular loop of wire with a battery, a glowing bulb, a swinging
// switch lever and sixteen charges lighting up in sequence around the loop.
func electricCircuit() []Primitive {
	const (
		halfW = 2.0
		halfH = 1.2
	)
	corners := []math3d.Vec3{
		math3d.V3(-halfW, -halfH, 0),
		math3d.V3(halfW, -halfH, 0),
		math3d.V3(halfW, halfH, 0),
		math3d.V3(-halfW, halfH, 0),
	}
	wire := math3d.Hex("#b08968")
	var ps []Primitive
	for i := range corners {
		ps = append(ps, Cylinder("wire", corners[i], corners[(i+1)%len(corners)], 0.05, wire))
	}
	hinge := math3d.V3(-0.4, halfH, 0)
	ps = append(ps,
		Box("battery", math3d.V3(-halfW, 0, 0), math3d.V3(0.35, 0.9, 0.35), math3d.Hex("#2b2d42")),
		Box("battery", math3d.V3(-halfW, 0.5, 0), math3d.V3(0.15, 0.1, 0.15), math3d.Hex("#d90429")),
		Sphere("bulb", math3d.V3(halfW, 0, 0), 0.35, math3d.Hex("#ffe06699")).With(Fade(0.4, 1000, 0)),
		Box("switch", hinge.Add(math3d.V3(0.3, 0.1, 0)), math3d.V3(0.6, 0.06, 0.06), math3d.Hex("#adb5bd")).
			With(Swing(math3d.UnitZ, hinge, 15*math3d.DegToRad, 3000, 0)),
	)

	const charges = 16
	perimeter := float32(4 * (halfW + halfH))
	for k := 0; k < charges; k++ {
		s := perimeter * float32(k) / charges
		ps = append(ps, Point("charge", alongLoop(corners, s), 0.07, math3d.Hex("#74c0fc40")).
			With(Fade(0.75, 1600, -math3d.Tau*float32(k)/charges)))
	}
	return ps
}

// alongLoop returns the point at arc length s along the closed polyline.
func alongLoop(corners []math3d.Vec3, s float32) math3d.Vec3 {
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		seg := b.Sub(a).Len()
		if s <= seg {
			return a.Lerp(b, s/seg)
		}
		s -= seg
	}
	return corners[0]
}
