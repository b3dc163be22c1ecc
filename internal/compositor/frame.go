package compositor

import (
	"image"

	"github.com/chewxy/math32"

	"viz-engine/internal/camera"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

// Frame is one tick's resolved scene. It is created per tick and never retained.
type Frame struct {
	Concept geometry.ConceptID
	Title   string
	// Subject is the display-only label shown next to the title.
	Subject   string
	ElapsedMs float64
	Camera    camera.State
	// Model is the whole-model spin applied to every item.
	Model math3d.Mat4
	// View is the camera's world → view transform.
	View       math3d.Mat4
	Projection Projection
	FOV        float32
	Near       float32
	Items      []Item
	// Geometry is the unanimated description the frame was composed from, for back ends
	// that hand animation to their own runtime. It must not be modified.
	Geometry *geometry.Description
}

// Item is one primitive after animation, model spin and camera transform.
type Item struct {
	Index int
	Kind  geometry.Kind
	Group string
	// World is the animated center in world space; WorldAxis the animated orientation axis.
	World     math3d.Vec3
	WorldAxis math3d.Vec3
	// Orient maps the primitive's local frame (long axis +Y) to world space.
	Orient   math3d.Mat4
	View     math3d.Vec3
	ViewAxis math3d.Vec3
	// Size is the primitive's size multiplied by Scale.
	Size    math3d.Vec3
	Scale   float32
	Angle   float32
	Opacity float32
	// Color carries the animated opacity as its alpha.
	Color   math3d.Color
	Visible bool
	Err     error
}

// Point is a screen position in pixels, origin top-left, Y down.
type Point struct {
	X, Y float32
}

// Projected is an item mapped to screen space.
type Projected struct {
	Index  int
	Kind   geometry.Kind
	Center Point
	// Radius is the on-screen radius for spheres and points and the major radius for rings.
	Radius float32
	// Minor is the second ellipse radius for rings and ellipsoids.
	Minor float32
	// Tilt rotates the ellipse's major axis from screen +X, in radians.
	Tilt float32
	// A and B are the ends of cylinders, lines and cones (B is a cone's tip).
	A, B Point
	// Width is the on-screen cross-section radius of cylinders, lines and cones, or a ring's tube.
	Width   float32
	Corners [8]Point
	// Depth is the distance in front of the camera.
	Depth float32
	// PixelsPerUnit is the scale used at this item's center.
	PixelsPerUnit float32
	Color         math3d.Color
	Visible       bool
}

// Focal returns the focal length in pixels for a viewport of the given height.
func (f Frame) Focal(height int) float32 {
	return float32(height) / 2 / math32.Tan(f.FOV/2)
}

// Project maps every item to a viewport of size, keeping item order.
func (f Frame) Project(size image.Point) []Projected {
	pr := projector{
		focal: f.Focal(size.Y),
		cx:    float32(size.X) / 2,
		cy:    float32(size.Y) / 2,
		near:  f.Near,
		weak:  f.Projection == WeakPerspective,
		view:  f.View,
	}
	if pr.weak {
		pr.uniform = pr.focal / f.Camera.Distance
	}
	out := make([]Projected, len(f.Items))
	for i, it := range f.Items {
		out[i] = pr.item(it)
	}
	return out
}

type projector struct {
	focal, cx, cy float32
	near          float32
	weak          bool
	uniform       float32
	view          math3d.Mat4
}

// scale returns pixels per world unit at view-space point v, or false when v is behind
// the near plane under perspective.
func (p projector) scale(v math3d.Vec3) (float32, bool) {
	if p.weak {
		return p.uniform, true
	}
	depth := -v.Z
	if depth < p.near {
		return 0, false
	}
	return p.focal / depth, true
}

func (p projector) point(v math3d.Vec3) (Point, bool) {
	s, ok := p.scale(v)
	return Point{p.cx + v.X*s, p.cy - v.Y*s}, ok
}

// world projects a world-space point.
func (p projector) world(w math3d.Vec3) (Point, bool) {
	return p.point(p.view.MulPoint(w))
}

func (p projector) item(it Item) Projected {
	out := Projected{Index: it.Index, Kind: it.Kind, Depth: -it.View.Z, Color: it.Color}
	s, ok := p.scale(it.View)
	if !it.Visible || !ok {
		return out
	}
	out.Visible = true
	out.PixelsPerUnit = s
	out.Center, _ = p.point(it.View)

	size := it.Size
	switch it.Kind {
	case geometry.KindSphere, geometry.KindPoint:
		out.Radius = size.X * s
		out.Minor = out.Radius
		if size.Y > 0 {
			out.Minor = size.Y * s
		}
		if it.Kind == geometry.KindPoint {
			out.Radius = math32.Max(out.Radius, 1)
			out.Minor = math32.Max(out.Minor, 1)
		}
	case geometry.KindRing:
		n := it.ViewAxis.AxisOr(math3d.UnitZ)
		out.Radius = size.X * s
		out.Minor = size.X * s * math32.Abs(n.Z)
		out.Width = math32.Max(size.Y*s, 0.5)
		if math32.Abs(n.X)+math32.Abs(n.Y) > 1e-6 {
			out.Tilt = math32.Atan2(n.X, n.Y)
		}
	case geometry.KindCylinder, geometry.KindLine, geometry.KindCone:
		half := it.WorldAxis.AxisOr(math3d.UnitY).Scale(size.Y / 2)
		a, okA := p.world(it.World.Sub(half))
		b, okB := p.world(it.World.Add(half))
		out.A, out.B = a, b
		out.Width = math32.Max(size.X*s, 0.5)
		out.Visible = okA && okB
	case geometry.KindBox:
		h := size.Scale(0.5)
		for i := range out.Corners {
			local := math3d.V3(sign(i&1, h.X), sign(i&2, h.Y), sign(i&4, h.Z))
			c, okC := p.world(it.World.Add(it.Orient.MulDir(local)))
			out.Corners[i] = c
			out.Visible = out.Visible && okC
		}
		out.Radius = h.Len() * s
	}
	return out
}

func sign(bit int, v float32) float32 {
	if bit != 0 {
		return v
	}
	return -v
}
