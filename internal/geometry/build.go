package geometry

import "viz-engine/internal/math3d"

// Sphere returns a sphere of radius r centered at pos.
func Sphere(group string, pos math3d.Vec3, r float32, c math3d.Color) Primitive {
	return Primitive{Kind: KindSphere, Group: group, Position: pos, Size: math3d.V3(r, 0, 0), Color: c}
}

// Ellipsoid returns a sphere with independent radii.
func Ellipsoid(group string, pos, radii math3d.Vec3, c math3d.Color) Primitive {
	return Primitive{Kind: KindSphere, Group: group, Position: pos, Size: radii, Color: c}
}

// Point returns a curve point (a small sphere used in point clouds and paths).
func Point(group string, pos math3d.Vec3, r float32, c math3d.Color) Primitive {
	return Primitive{Kind: KindPoint, Group: group, Position: pos, Size: math3d.V3(r, 0, 0), Color: c}
}

// Cylinder returns a cylinder of radius r spanning from → to.
func Cylinder(group string, from, to math3d.Vec3, r float32, c math3d.Color) Primitive {
	d := to.Sub(from)
	return Primitive{
		Kind:     KindCylinder,
		Group:    group,
		Position: from.Add(d.Scale(0.5)),
		Size:     math3d.V3(r, d.Len(), 0),
		Axis:     d.Normalize(),
		Color:    c,
	}
}

// Line returns a segment from → to drawn with the given stroke width.
func Line(group string, from, to math3d.Vec3, width float32, c math3d.Color) Primitive {
	p := Cylinder(group, from, to, width, c)
	p.Kind = KindLine
	return p
}

// Ring returns a torus centered at center with the given normal.
func Ring(group string, center, normal math3d.Vec3, major, tube float32, c math3d.Color) Primitive {
	return Primitive{
		Kind:     KindRing,
		Group:    group,
		Position: center,
		Size:     math3d.V3(major, tube, 0),
		Axis:     normal.Normalize(),
		Color:    c,
	}
}

// Cone returns a cone centered at center whose tip points along axis.
func Cone(group string, center, axis math3d.Vec3, r, h float32, c math3d.Color) Primitive {
	return Primitive{
		Kind:     KindCone,
		Group:    group,
		Position: center,
		Size:     math3d.V3(r, h, 0),
		Axis:     axis.Normalize(),
		Color:    c,
	}
}

// Box returns an axis-aligned box with full extents size.
func Box(group string, center, size math3d.Vec3, c math3d.Color) Primitive {
	return Primitive{Kind: KindBox, Group: group, Position: center, Size: size, Color: c}
}

// With attaches an animation rule.
func (p Primitive) With(a Animation) Primitive {
	p.Animation = &a
	return p
}

// Rotate spins about axis through the model origin.
func Rotate(axis math3d.Vec3, periodMs, phase float32) Animation {
	return Animation{Rule: RuleRotate, Axis: axis.Normalize(), PeriodMs: periodMs, Phase: phase}
}

// RotateAbout spins about axis through pivot.
func RotateAbout(axis, pivot math3d.Vec3, periodMs, phase float32) Animation {
	a := Rotate(axis, periodMs, phase)
	a.Pivot = pivot
	return a
}

// Orbit circles the primitive's position at the given radius in the plane perpendicular to axis.
func Orbit(axis math3d.Vec3, radius, periodMs, phase float32) Animation {
	return Animation{Rule: RuleOrbit, Axis: axis.Normalize(), Amplitude: radius, PeriodMs: periodMs, Phase: phase}
}

// Pulse scales between 1 and 1+amp.
func Pulse(amp, periodMs, phase float32) Animation {
	return Animation{Rule: RuleScale, Amplitude: amp, PeriodMs: periodMs, Phase: phase}
}

// Fade moves opacity between the color's alpha and alpha+amp.
func Fade(amp, periodMs, phase float32) Animation {
	return Animation{Rule: RuleFade, Amplitude: amp, PeriodMs: periodMs, Phase: phase}
}

// Oscillate moves the primitive between its position and position+dir·amp.
func Oscillate(dir math3d.Vec3, amp, periodMs, phase float32) Animation {
	return Animation{Rule: RuleOscillate, Axis: dir.Normalize(), Amplitude: amp, PeriodMs: periodMs, Phase: phase}
}

// Swing rocks between -amp and +amp radians about axis through pivot.
func Swing(axis, pivot math3d.Vec3, amp, periodMs, phase float32) Animation {
	return Animation{Rule: RuleSwing, Axis: axis.Normalize(), Pivot: pivot, Amplitude: amp, PeriodMs: periodMs, Phase: phase}
}

// Linear switches a pulse-type rule to the triangle wave.
func (a Animation) Linear() Animation {
	a.Easing = EaseLinear
	return a
}
