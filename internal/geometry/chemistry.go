package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

type shell struct {
	radius    float32
	electrons int
	periodMs  float32
	tiltDeg   float32
}

var atomShells = []shell{
	{radius: 1.2, electrons: 2, periodMs: 3000, tiltDeg: 0},
	{radius: 1.9, electrons: 8, periodMs: 4500, tiltDeg: 60},
	{radius: 2.6, electrons: 4, periodMs: 6000, tiltDeg: -60},
}

// atomicStructure is a Bohr model: one nucleus and, per shell, a ring track followed by
// its electrons spaced evenly around the orbit.
func atomicStructure() []Primitive {
	ps := []Primitive{
		Sphere("nucleus", math3d.Zero, 0.45, math3d.Hex("#ff5544")).With(Pulse(0.06, 2000, 0)),
	}
	for i, s := range atomShells {
		group := fmt.Sprintf("orbit-%d", i+1)
		axis := math3d.UnitY.RotateAxis(math3d.UnitX, s.tiltDeg*math3d.DegToRad)
		ps = append(ps, Ring(group, math3d.Zero, axis, s.radius, 0.015, math3d.Hex("#9ad0ff55")))
		for j := 0; j < s.electrons; j++ {
			phase := math3d.Tau * float32(j) / float32(s.electrons)
			ps = append(ps, Sphere(group, math3d.Zero, 0.12, math3d.Hex("#4fc3ff")).
				With(Orbit(axis, s.radius, s.periodMs, phase)))
		}
	}
	return ps
}

// molecularBonding is a water molecule: oxygen, two hydrogens at the 104.5° bond angle,
// the two O–H bonds and two lone pairs drawn as fading electron points.
func molecularBonding() []Primitive {
	const (
		bondLength = 1.4
		halfAngle  = 104.5 / 2 * math3d.DegToRad
	)
	oxygen := math3d.Zero
	s, c := math32.Sincos(halfAngle)
	h1 := math3d.V3(-s*bondLength, -c*bondLength, 0)
	h2 := math3d.V3(s*bondLength, -c*bondLength, 0)
	bondColor := math3d.Hex("#c8c8c8")

	ps := []Primitive{
		Cylinder("bond-1", oxygen, h1, 0.08, bondColor),
		Cylinder("bond-2", oxygen, h2, 0.08, bondColor),
		Sphere("oxygen", oxygen, 0.55, math3d.Hex("#ff3b30")).With(Pulse(0.04, 2400, 0)),
		Sphere("hydrogen-1", h1, 0.35, math3d.Hex("#f5f5f5")).
			With(Oscillate(h1, 0.08, 1200, 0)),
		Sphere("hydrogen-2", h2, 0.35, math3d.Hex("#f5f5f5")).
			With(Oscillate(h2, 0.08, 1200, math32.Pi)),
	}
	for k, z := range []float32{-0.8, 0.8} {
		dir := math3d.V3(0, 0.6, z).Normalize()
		center := oxygen.Add(dir.Scale(0.85))
		group := fmt.Sprintf("lone-pair-%d", k+1)
		for _, dx := range []float32{-0.12, 0.12} {
			ps = append(ps, Point(group, center.Add(math3d.V3(dx, 0, 0)), 0.06, math3d.Hex("#ffe066ff")).
				With(Fade(-0.6, 1800, float32(k)*math32.Pi)))
		}
	}
	return ps
}

// crystalLattice is a 3×3×3 rock-salt lattice: bonds to the +x/+y/+z neighbours first so
// the ions are drawn over them, then alternating Na and Cl ions by coordinate parity.
func crystalLattice() []Primitive {
	const (
		n       = 3
		spacing = 1.1
	)
	offset := -float32(n-1) / 2 * spacing
	site := func(x, y, z int) math3d.Vec3 {
		return math3d.V3(offset+float32(x)*spacing, offset+float32(y)*spacing, offset+float32(z)*spacing)
	}
	bondColor := math3d.Hex("#b0b0b0aa")

	var ps []Primitive
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				p := site(x, y, z)
				if x+1 < n {
					ps = append(ps, Cylinder("bond", p, site(x+1, y, z), 0.04, bondColor))
				}
				if y+1 < n {
					ps = append(ps, Cylinder("bond", p, site(x, y+1, z), 0.04, bondColor))
				}
				if z+1 < n {
					ps = append(ps, Cylinder("bond", p, site(x, y, z+1), 0.04, bondColor))
				}
			}
		}
	}
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				parity := x + y + z
				phase := float32(parity) * 0.5
				if parity%2 == 0 {
					ps = append(ps, Sphere("na", site(x, y, z), 0.22, math3d.Hex("#9b59b6")).
						With(Pulse(0.06, 2400, phase)))
				} else {
					ps = append(ps, Sphere("cl", site(x, y, z), 0.34, math3d.Hex("#2ecc71")).
						With(Pulse(0.06, 2400, phase)))
				}
			}
		}
	}
	return ps
}

// statesOfMatter shows three clusters left to right: a jittering solid lattice, a loosely
// packed liquid and a gas of particles orbiting on random axes.
func statesOfMatter() []Primitive {
	const seed = 7103
	var ps []Primitive

	solid := math3d.V3(-3, 0, 0)
	i := 0
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				p := solid.Add(math3d.V3(float32(x), float32(y), float32(z)).Scale(0.32))
				ps = append(ps, Sphere("solid", p, 0.12, math3d.Hex("#4cc9f0")).
					With(Oscillate(randomDir(i, seed), 0.04, 300, float32(i))))
				i++
			}
		}
	}

	liquid := math3d.Zero
	for k := 0; k < 20; k++ {
		p := scatter(k, seed+1, liquid, 0.1, 0.9)
		ps = append(ps, Sphere("liquid", p, 0.12, math3d.Hex("#4361ee")).
			With(Oscillate(randomDir(k, seed+2), 0.25, 1400, float32(k)*0.9)))
	}

	gas := math3d.V3(3, 0, 0)
	for k := 0; k < 16; k++ {
		radius := math3d.Lerp(0.4, 1.2, hash3(int32(k), 3, 0, seed))
		period := math3d.Lerp(900, 1700, hash3(int32(k), 4, 0, seed))
		ps = append(ps, Sphere("gas", gas, 0.1, math3d.Hex("#f72585")).
			With(Orbit(randomDir(k, seed+3), radius, period, math3d.Tau*hash3(int32(k), 5, 0, seed))))
	}
	return ps
}
