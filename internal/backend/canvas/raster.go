package canvas

import (
	"image"
	"sort"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"

	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// painter fills paths onto an RGBA overlay, one shape at a time.
type painter struct {
	z   *vector.Rasterizer
	dst *image.RGBA
}

func newPainter(dst *image.RGBA) *painter {
	b := dst.Bounds()
	return &painter{z: vector.NewRasterizer(b.Dx(), b.Dy()), dst: dst}
}

// fill draws the accumulated path in c and starts a new one.
func (p *painter) fill(c math3d.Color) {
	if c.A > 0 {
		p.z.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c.NRGBA()), image.Point{})
	}
	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
}

// ellipse adds a closed ellipse with radii rx, ry rotated by tilt. reverse flips the winding
// so that it cuts a hole in a previously added ellipse.
func (p *painter) ellipse(c compositor.Point, rx, ry, tilt float32, reverse bool) {
	st, ct := math32.Sincos(tilt)
	at := func(x, y float32) (float32, float32) {
		x, y = x*rx, y*ry
		return c.X + x*ct - y*st, c.Y + x*st + y*ct
	}
	step := math32.Pi / 2
	if reverse {
		step = -step
	}
	p.z.MoveTo(at(1, 0))
	for i := 0; i < 4; i++ {
		a0 := float32(i) * step
		a1 := a0 + step
		s0, c0 := math32.Sincos(a0)
		s1, c1 := math32.Sincos(a1)
		k := float32(kappa)
		if reverse {
			k = -k
		}
		x1, y1 := at(c0-k*s0, s0+k*c0)
		x2, y2 := at(c1+k*s1, s1-k*c1)
		x3, y3 := at(c1, s1)
		p.z.CubeTo(x1, y1, x2, y2, x3, y3)
	}
	p.z.ClosePath()
}

func (p *painter) polygon(pts []compositor.Point) {
	if len(pts) < 3 {
		return
	}
	p.z.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.z.LineTo(q.X, q.Y)
	}
	p.z.ClosePath()
}

// offscreen reports whether a shape of the given reach around c misses the overlay.
func (p *painter) offscreen(c compositor.Point, reach float32) bool {
	b := p.dst.Bounds()
	return c.X+reach < 0 || c.Y+reach < 0 || c.X-reach > float32(b.Dx()) || c.Y-reach > float32(b.Dy())
}

// draw rasterizes one projected primitive.
func (p *painter) draw(pr compositor.Projected) {
	if !pr.Visible {
		return
	}
	switch pr.Kind {
	case geometry.KindSphere, geometry.KindPoint:
		p.sphere(pr)
	case geometry.KindRing:
		p.ring(pr)
	case geometry.KindCylinder, geometry.KindLine:
		p.band(pr, pr.Width, pr.Width)
	case geometry.KindCone:
		p.band(pr, pr.Width, 0)
	case geometry.KindBox:
		p.box(pr)
	}
}

func (p *painter) sphere(pr compositor.Projected) {
	r := math32.Max(pr.Radius, pr.Minor)
	if r < 0.25 || p.offscreen(pr.Center, r) {
		return
	}
	p.ellipse(pr.Center, pr.Radius, pr.Minor, pr.Tilt, false)
	if pr.Kind == geometry.KindPoint || r < 3 {
		p.fill(pr.Color)
		return
	}
	// Radial shading: dark rim, body, then a highlight toward the upper left.
	p.fill(pr.Color.Shade(0.55))
	inner := compositor.Point{X: pr.Center.X - 0.12*pr.Radius, Y: pr.Center.Y - 0.12*pr.Minor}
	p.ellipse(inner, 0.82*pr.Radius, 0.82*pr.Minor, pr.Tilt, false)
	p.fill(pr.Color)
	spec := compositor.Point{X: pr.Center.X - 0.35*pr.Radius, Y: pr.Center.Y - 0.35*pr.Minor}
	p.ellipse(spec, 0.22*pr.Radius, 0.22*pr.Minor, pr.Tilt, false)
	p.fill(pr.Color.Mix(math3d.Hex("#ffffff"), 0.6).WithOpacity(pr.Color.Opacity() * 0.8))
}

func (p *painter) ring(pr compositor.Projected) {
	w := pr.Width
	if p.offscreen(pr.Center, pr.Radius+w) {
		return
	}
	p.ellipse(pr.Center, pr.Radius+w, pr.Minor+w, pr.Tilt, false)
	p.ellipse(pr.Center, math32.Max(pr.Radius-w, 0), math32.Max(pr.Minor-w, 0), pr.Tilt, true)
	p.fill(pr.Color)
}

// band fills the quad around segment A→B with half-widths wa at A and wb at B.
func (p *painter) band(pr compositor.Projected, wa, wb float32) {
	dx, dy := pr.B.X-pr.A.X, pr.B.Y-pr.A.Y
	l := math32.Hypot(dx, dy)
	if l < 1e-3 {
		// Seen end-on: draw the cross-section.
		p.ellipse(pr.Center, wa, wa, 0, false)
		p.fill(pr.Color)
		return
	}
	nx, ny := -dy/l, dx/l
	p.polygon([]compositor.Point{
		{X: pr.A.X + nx*wa, Y: pr.A.Y + ny*wa},
		{X: pr.B.X + nx*wb, Y: pr.B.Y + ny*wb},
		{X: pr.B.X - nx*wb, Y: pr.B.Y - ny*wb},
		{X: pr.A.X - nx*wa, Y: pr.A.Y - ny*wa},
	})
	p.fill(pr.Color)
}

func (p *painter) box(pr compositor.Projected) {
	if p.offscreen(pr.Center, pr.Radius) {
		return
	}
	p.polygon(convexHull(pr.Corners[:]))
	p.fill(pr.Color.Shade(0.85))
}

// convexHull returns the hull of pts in order (Andrew's monotone chain).
func convexHull(pts []compositor.Point) []compositor.Point {
	ps := append([]compositor.Point(nil), pts...)
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].X != ps[j].X {
			return ps[i].X < ps[j].X
		}
		return ps[i].Y < ps[j].Y
	})
	cross := func(o, a, b compositor.Point) float32 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]compositor.Point, 0, 2*len(ps))
	for _, q := range ps {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], q) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, q)
	}
	lower := len(hull) + 1
	for i := len(ps) - 2; i >= 0; i-- {
		q := ps[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], q) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, q)
	}
	return hull[:len(hull)-1]
}
