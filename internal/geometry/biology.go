package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// basePairColors cycles A-T, T-A, C-G, G-C along the helix.
var basePairColors = []math3d.Color{
	math3d.Hex("#f5a623"),
	math3d.Hex("#7ed321"),
	math3d.Hex("#bd10e0"),
	math3d.Hex("#50e3c2"),
}

// dnaHelix places two strands half a turn apart on a helix of two turns, with a base-pair
// rung between them at every step.
func dnaHelix() []Primitive {
	const (
		steps  = 20
		turns  = 2
		height = 6
		radius = 1
	)
	var ps []Primitive
	for i := 0; i < steps; i++ {
		theta := math3d.Tau * turns * float32(i) / steps
		y := -height/2 + height*float32(i)/(steps-1)
		s, c := math32.Sincos(theta)
		a := math3d.V3(radius*c, y, radius*s)
		b := math3d.V3(-radius*c, y, -radius*s)
		ps = append(ps,
			Cylinder(fmt.Sprintf("base-pair-%d", i+1), a, b, 0.05, basePairColors[i%len(basePairColors)]),
			Sphere("strand-a", a, 0.14, math3d.Hex("#4a90e2")),
			Sphere("strand-b", b, 0.14, math3d.Hex("#e94e77")),
		)
	}
	return ps
}

// cellStructure is an animal cell: a translucent membrane, nucleus with nucleolus, an
// endoplasmic reticulum ring, Golgi stack, and mitochondria and ribosomes scattered through
// the cytoplasm by hash noise.
func cellStructure() []Primitive {
	const seed = 4242
	nucleus := math3d.V3(0.3, 0.2, 0)
	ps := []Primitive{
		Sphere("membrane", math3d.Zero, 2.6, math3d.Hex("#7fb3ff40")).With(Fade(0.15, 4000, 0)),
		Ring("endoplasmic-reticulum", nucleus, math3d.V3(0.3, 1, 0.2), 1.1, 0.06, math3d.Hex("#e0a0ffcc")).
			With(RotateAbout(math3d.UnitY, nucleus, 9000, 0)),
		Sphere("nucleus", nucleus, 0.8, math3d.Hex("#6a4c93")),
		Sphere("nucleolus", nucleus.Add(math3d.V3(0.2, 0.15, 0.35)), 0.3, math3d.Hex("#3d2a5c")).
			With(Pulse(0.1, 2200, 0)),
	}
	for k := 0; k < 3; k++ {
		center := math3d.V3(-1.4, 0.8+0.15*float32(k), 0.4)
		ps = append(ps, Box("golgi", center, math3d.V3(0.9-0.15*float32(k), 0.08, 0.5), math3d.Hex("#f4a261")).
			With(Oscillate(math3d.UnitX, 0.05, 3000, float32(k))))
	}
	for k := 0; k < 5; k++ {
		center := scatter(k, seed, math3d.Zero, 1.5, 2.2)
		axis := randomDir(k, seed+1)
		from := center.Sub(axis.Scale(0.3))
		to := center.Add(axis.Scale(0.3))
		ps = append(ps, Cylinder(fmt.Sprintf("mitochondrion-%d", k+1), from, to, 0.14, math3d.Hex("#ff7f50")).
			With(Oscillate(axis, 0.1, 2600, float32(k))))
	}
	for k := 0; k < 14; k++ {
		p := scatter(k, seed+2, math3d.Zero, 1.2, 2.4)
		ps = append(ps, Point("ribosome", p, 0.05, math3d.Hex("#ffe066")).
			With(Oscillate(math3d.UnitY, 0.08, 1500, float32(k)*0.7)))
	}
	return ps
}

// photosynthesis shows light rays from the sun reaching a leaf, CO2 molecules drifting in
// and O2 bubbles rising off the leaf surface.
func photosynthesis() []Primitive {
	sun := math3d.V3(-2.5, 2.5, 0)
	leaf := math3d.Zero
	ps := []Primitive{
		Sphere("sun", sun, 0.5, math3d.Hex("#ffd60a")).With(Pulse(0.08, 2000, 0)),
		Ellipsoid("leaf", leaf, math3d.V3(1.8, 0.15, 1), math3d.Hex("#2d6a4f")),
		Line("leaf", math3d.V3(-1.7, 0.16, 0), math3d.V3(1.7, 0.16, 0), 0.03, math3d.Hex("#95d5b2")),
	}
	for k := 0; k < 5; k++ {
		target := math3d.V3(-1.2+0.6*float32(k), 0.15, 0)
		ps = append(ps, Line("light", sun, target, 0.03, math3d.Hex("#fff3b080")).
			With(Fade(0.4, 1600, float32(k)*0.6)))
	}
	carbon, oxygen := math3d.Hex("#555555"), math3d.Hex("#e63946")
	for k := 0; k < 3; k++ {
		group := fmt.Sprintf("co2-%d", k+1)
		p := math3d.V3(2.6, 0.6+0.6*float32(k), -0.3+0.3*float32(k))
		toward := leaf.Sub(p)
		drift := Oscillate(toward, 0.8, 3000, float32(k))
		ps = append(ps,
			Sphere(group, p, 0.1, carbon).With(drift),
			Sphere(group, p.Add(math3d.V3(-0.22, 0, 0)), 0.09, oxygen).With(drift),
			Sphere(group, p.Add(math3d.V3(0.22, 0, 0)), 0.09, oxygen).With(drift),
		)
	}
	for k := 0; k < 6; k++ {
		p := math3d.V3(-0.9+0.36*float32(k), 0.25, 0.2)
		ps = append(ps, Sphere("o2", p, 0.08, math3d.Hex("#a8dadccc")).
			With(Oscillate(math3d.UnitY, 1.5, 2500, float32(k)*1.1)))
	}
	return ps
}

// humanHeart is four chambers and an apex that beat in sequence (atria, then ventricles),
// the great vessels, and blood cells circulating around the organ.
func humanHeart() []Primitive {
	const beat = 800
	atria := Pulse(0.08, beat, 0)
	ventricles := Pulse(0.1, beat, math32.Pi/2)
	ps := []Primitive{
		Cylinder("vena-cava", math3d.V3(-0.6, 0.9, 0), math3d.V3(-0.7, 1.8, 0), 0.16, math3d.Hex("#4361ee")),
		Cylinder("aorta", math3d.V3(0.2, 0.7, 0), math3d.V3(0.4, 1.6, 0), 0.18, math3d.Hex("#ff6b6b")),
		Cylinder("aorta", math3d.V3(0.4, 1.6, 0), math3d.V3(1.0, 1.5, 0), 0.18, math3d.Hex("#ff6b6b")),
		Cylinder("aorta", math3d.V3(1.0, 1.5, 0), math3d.V3(1.1, 0.8, 0), 0.18, math3d.Hex("#ff6b6b")),
		Sphere("right-atrium", math3d.V3(-0.45, 0.6, 0), 0.45, math3d.Hex("#c1121f")).With(atria),
		Sphere("left-atrium", math3d.V3(0.45, 0.65, -0.1), 0.42, math3d.Hex("#e5383b")).With(atria),
		Sphere("right-ventricle", math3d.V3(-0.35, -0.2, 0.1), 0.6, math3d.Hex("#9d0208")).With(ventricles),
		Sphere("left-ventricle", math3d.V3(0.35, -0.25, 0), 0.65, math3d.Hex("#d00000")).With(ventricles),
		Cone("apex", math3d.V3(0, -0.95, 0), math3d.UnitY.Neg(), 0.5, 0.7, math3d.Hex("#9d0208")).With(ventricles),
	}
	axis := math3d.V3(0.3, 1, 0.2)
	for k := 0; k < 10; k++ {
		c := math3d.Hex("#e63946")
		if k%2 == 1 {
			c = math3d.Hex("#457b9d")
		}
		ps = append(ps, Point("blood", math3d.Zero, 0.07, c).
			With(Orbit(axis, 1.6, 2400, math3d.Tau*float32(k)/10)))
	}
	return ps
}
