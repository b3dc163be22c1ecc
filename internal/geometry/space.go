package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

type planet struct {
	size  float32
	color string
}

var planets = []planet{
	{0.12, "#b5b5b5"},
	{0.18, "#e9c46a"},
	{0.2, "#4895ef"},
	{0.15, "#e76f51"},
	{0.35, "#f4a261"},
	{0.3, "#e9d8a6"},
}

// solarSystem orbits six planets around a pulsing sun. Periods follow Kepler's third law
// relative to the innermost orbit; each planet has a faint track ring and the last one a
// tilted ring of its own.
func solarSystem() []Primitive {
	const (
		innerRadius = 1.4
		step        = 0.72
		basePeriod  = 4000
	)
	ps := []Primitive{
		Sphere("sun", math3d.Zero, 0.7, math3d.Hex("#ffb400")).With(Pulse(0.05, 3000, 0)),
	}
	for i, pl := range planets {
		group := fmt.Sprintf("planet-%d", i+1)
		r := innerRadius + step*float32(i)
		period := basePeriod * math32.Pow(r/innerRadius, 1.5)
		orbit := Orbit(math3d.UnitY, r, period, float32(i)*1.1)
		ps = append(ps,
			Ring(group, math3d.Zero, math3d.UnitY, r, 0.01, math3d.Hex("#ffffff30")),
			Sphere(group, math3d.Zero, pl.size, math3d.Hex(pl.color)).With(orbit),
		)
		if i == len(planets)-1 {
			ps = append(ps, Ring(group, math3d.Zero, math3d.V3(0.3, 1, 0), pl.size*1.8, 0.03, math3d.Hex("#d4c39acc")).
				With(orbit))
		}
	}
	return ps
}

// earthLayers nests inner core, outer core, mantle and crust from the inside out, then an
// equator ring and surface samples coloured land or ocean by fractal noise. The crust and
// its surface rotate once every twenty seconds.
func earthLayers() []Primitive {
	const (
		crustRadius = 2.0
		samples     = 24
		seed        = 1989
		dayMs       = 20000
	)
	day := Rotate(math3d.UnitY, dayMs, 0)
	ps := []Primitive{
		Sphere("inner-core", math3d.Zero, 0.6, math3d.Hex("#ffd166")).With(Pulse(0.05, 2600, 0)),
		Sphere("outer-core", math3d.Zero, 1.1, math3d.Hex("#f4a261a0")),
		Sphere("mantle", math3d.Zero, 1.8, math3d.Hex("#e76f5170")),
		Sphere("crust", math3d.Zero, crustRadius, math3d.Hex("#2a9d8f50")).With(day),
		Ring("equator", math3d.Zero, math3d.UnitY, crustRadius+0.05, 0.02, math3d.Hex("#ffffff80")),
	}
	land, ocean := math3d.Hex("#52b788"), math3d.Hex("#0077b6")
	for i := 0; i < samples; i++ {
		dir := fibonacciSphere(i, samples)
		lon := math32.Atan2(dir.Z, dir.X)
		lat := math32.Asin(dir.Y)
		h := fractalNoise2D(lon*1.5+4, lat*1.5+4, seed, 4)
		c := ocean
		if h > 0.5 {
			c = land
		}
		ps = append(ps, Point("surface", dir.Scale(crustRadius+0.02), 0.08+0.06*h, c).With(day))
	}
	return ps
}
