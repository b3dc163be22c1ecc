// Package animation evaluates primitive animation rules as pure functions of elapsed time.
//
// Every pulse-type rule (scale-pulse, fade, translate-oscillate, swing) runs on the same
// alternating wave: it moves from its baseline to baseline+amplitude and back within one
// period, never jumping back to the start. Rotation and orbit angles are derived from the
// elapsed time modulo the period, so nothing accumulates between frames.
package animation

import (
	"math"

	"github.com/chewxy/math32"

	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

// Pose is the resolved transform of a primitive at one instant, in model space.
type Pose struct {
	// Position is the animated center.
	Position math3d.Vec3
	// Axis is the animated orientation axis (long axis or ring normal).
	Axis math3d.Vec3
	// Rotation is the animated orientation change relative to the primitive's rest pose.
	Rotation math3d.Mat4
	// Angle is the rotate/swing angle or the orbit angle, in radians.
	Angle float32
	// Offset is the displacement from the rest position added by orbit or oscillation.
	Offset  math3d.Vec3
	Scale   float32
	Opacity float32
}

// Rest returns the pose of p with no animation applied.
func Rest(p geometry.Primitive) Pose {
	return Pose{
		Position: p.Position,
		Axis:     p.OrientAxis(),
		Rotation: math3d.Identity(),
		Scale:    1,
		Opacity:  p.Color.Opacity(),
	}
}

// Evaluate resolves p at elapsedMs. A missing rule or a non-positive period yields the rest pose.
func Evaluate(p geometry.Primitive, elapsedMs float64) Pose {
	pose := Rest(p)
	a := p.Animation
	if a == nil || a.PeriodMs <= 0 {
		return pose
	}

	switch a.Rule {
	case geometry.RuleRotate:
		pose.rotate(p, a, Angle(*a, elapsedMs))
	case geometry.RuleSwing:
		pose.rotate(p, a, a.Amplitude*(2*Wave(*a, elapsedMs)-1))
	case geometry.RuleOrbit:
		theta := Angle(*a, elapsedMs)
		u, v := math3d.Basis(a.Axis)
		s, c := math32.Sincos(theta)
		pose.Angle = theta
		pose.Offset = u.Scale(a.Amplitude * c).Add(v.Scale(a.Amplitude * s))
		pose.Position = p.Position.Add(pose.Offset)
	case geometry.RuleScale:
		pose.Scale = 1 + a.Amplitude*Wave(*a, elapsedMs)
	case geometry.RuleFade:
		pose.Opacity = math3d.Clamp(pose.Opacity+a.Amplitude*Wave(*a, elapsedMs), 0, 1)
	case geometry.RuleOscillate:
		pose.Offset = a.Axis.AxisOr(math3d.UnitY).Scale(a.Amplitude * Wave(*a, elapsedMs))
		pose.Position = p.Position.Add(pose.Offset)
	}
	return pose
}

func (pose *Pose) rotate(p geometry.Primitive, a *geometry.Animation, angle float32) {
	r := math3d.Rotate(a.Axis.AxisOr(math3d.UnitY), angle)
	pose.Angle = angle
	pose.Rotation = r
	pose.Position = a.Pivot.Add(r.MulDir(p.Position.Sub(a.Pivot)))
	pose.Axis = r.MulDir(pose.Axis)
}

// Cycle returns the fraction of the period elapsed at elapsedMs, in [0,1).
func Cycle(periodMs float32, elapsedMs float64) float64 {
	if periodMs <= 0 {
		return 0
	}
	p := float64(periodMs)
	c := math.Mod(elapsedMs, p) / p
	if c < 0 {
		c++
	}
	return c
}

// Angle returns the rule's angle 2π·t/P + phase wrapped to [0, 2π).
func Angle(a geometry.Animation, elapsedMs float64) float32 {
	return math3d.WrapAngle(float32(2*math.Pi*Cycle(a.PeriodMs, elapsedMs)) + a.Phase)
}

// Wave returns the alternating wave value in [0,1]: 0 at the start of each period,
// 1 at the half period, and back to 0. Sine easing follows (1 - cos)/2; linear easing is
// the triangle wave through the same points.
func Wave(a geometry.Animation, elapsedMs float64) float32 {
	c := Cycle(a.PeriodMs, elapsedMs) + float64(a.Phase)/(2*math.Pi)
	c -= math.Floor(c)
	if a.Easing == geometry.EaseLinear {
		return float32(1 - math.Abs(2*c-1))
	}
	return float32((1 - math.Cos(2*math.Pi*c)) / 2)
}

// ModelMatrix returns the whole-model spin of d at elapsedMs, or identity when d has none.
func ModelMatrix(d geometry.Description, elapsedMs float64) math3d.Mat4 {
	s := d.Spin
	if s == nil || s.PeriodMs <= 0 {
		return math3d.Identity()
	}
	angle := Angle(*s, elapsedMs)
	if s.Rule == geometry.RuleSwing {
		angle = s.Amplitude * (2*Wave(*s, elapsedMs) - 1)
	}
	r := math3d.Rotate(s.Axis.AxisOr(math3d.UnitY), angle)
	return math3d.Translate(s.Pivot).Mul(r).Mul(math3d.Translate(s.Pivot.Neg()))
}
