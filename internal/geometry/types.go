// Package geometry maps concept names to deterministic procedural descriptions built from
// simple primitives (spheres, cylinders, rings, cones, boxes, points and lines), each with an
// optional closed-form animation rule. Nothing here depends on rendering or time.
package geometry

import (
	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// ConceptID names a visualization, e.g. "Atomic Structure".
type ConceptID string

// Kind is the drawable shape of a Primitive.
type Kind string

const (
	KindSphere   Kind = "sphere"
	KindCylinder Kind = "cylinder"
	KindRing     Kind = "ring"
	KindCone     Kind = "cone"
	KindBox      Kind = "box"
	KindPoint    Kind = "point"
	KindLine     Kind = "line"
)

// Kinds lists every primitive kind.
var Kinds = []Kind{KindSphere, KindCylinder, KindRing, KindCone, KindBox, KindPoint, KindLine}

// Rule is the closed-form animation applied to a primitive.
type Rule string

const (
	RuleRotate    Rule = "rotate"
	RuleOrbit     Rule = "orbit"
	RuleScale     Rule = "scale-pulse"
	RuleFade      Rule = "fade"
	RuleOscillate Rule = "translate-oscillate"
	RuleSwing     Rule = "swing"
)

// Easing selects the alternating wave shape of pulse-type rules.
type Easing string

const (
	EaseSine   Easing = "sine"
	EaseLinear Easing = "linear"
)

// Animation is a periodic rule evaluated from elapsed time. Its meaning per Rule:
//
//	rotate               spin about Axis through Pivot; Amplitude unused
//	orbit                circle of radius Amplitude around the primitive's Position, in the plane ⟂ Axis
//	scale-pulse          scale 1 → 1+Amplitude and back
//	fade                 opacity base → base+Amplitude and back (base is the color's alpha)
//	translate-oscillate  offset 0 → Axis·Amplitude and back
//	swing                rotation about Axis through Pivot between -Amplitude and +Amplitude radians
type Animation struct {
	Rule      Rule        `yaml:"rule"`
	Axis      math3d.Vec3 `yaml:"axis,omitempty"`
	Pivot     math3d.Vec3 `yaml:"pivot,omitempty"`
	Amplitude float32     `yaml:"amplitude,omitempty"`
	PeriodMs  float32     `yaml:"period_ms"`
	Phase     float32     `yaml:"phase,omitempty"`
	Easing    Easing      `yaml:"easing,omitempty"`
}

// Primitive is a single drawable shape in model space.
//
// Size conventions: sphere and point use X as radius (Y and Z, when set, give ellipsoid radii);
// cylinder and cone use X as radius and Y as height; ring uses X as the major radius and Y as
// the tube radius; box uses X, Y, Z as full extents; line uses Y as length and X as stroke width.
// Axis is the long axis (cylinder, cone, line) or the normal (ring); zero means +Y.
type Primitive struct {
	Kind      Kind         `yaml:"kind"`
	Group     string       `yaml:"group"`
	Position  math3d.Vec3  `yaml:"position"`
	Size      math3d.Vec3  `yaml:"size"`
	Axis      math3d.Vec3  `yaml:"axis,omitempty"`
	Color     math3d.Color `yaml:"color"`
	Animation *Animation   `yaml:"animation,omitempty"`
}

// Description is the full primitive set for one concept. Spin, when set, is a rotate rule
// applied to the whole model after each primitive's own animation.
type Description struct {
	Concept                 ConceptID   `yaml:"concept"`
	Requested               string      `yaml:"requested,omitempty"`
	Fallback                bool        `yaml:"fallback,omitempty"`
	Title                   string      `yaml:"title"`
	BoundingRadius          float32     `yaml:"bounding_radius"`
	SuggestedCameraDistance float32     `yaml:"suggested_camera_distance"`
	Spin                    *Animation  `yaml:"spin,omitempty"`
	Primitives              []Primitive `yaml:"primitives"`
}

// OrientAxis returns the primitive's unit orientation axis.
func (p Primitive) OrientAxis() math3d.Vec3 {
	return p.Axis.AxisOr(math3d.UnitY)
}

// Extent returns the radius of a sphere around Position that encloses the unanimated shape.
func (p Primitive) Extent() float32 {
	s := p.Size
	switch p.Kind {
	case KindSphere, KindPoint:
		return math32.Max(s.X, math32.Max(s.Y, s.Z))
	case KindCylinder, KindCone:
		return math32.Hypot(s.X, s.Y/2)
	case KindRing:
		return s.X + s.Y
	case KindBox:
		return s.Len() / 2
	case KindLine:
		return math32.Max(s.Y/2, s.X)
	}
	return s.Len()
}

// Reach returns the largest distance from the model origin that any animated pose of p can cover.
func (p Primitive) Reach() float32 {
	extent := p.Extent()
	center := p.Position.Len()
	a := p.Animation
	if a == nil {
		return center + extent
	}
	amp := math32.Abs(a.Amplitude)
	switch a.Rule {
	case RuleOrbit, RuleOscillate:
		return center + amp + extent
	case RuleScale:
		return center + extent*(1+amp)
	case RuleRotate, RuleSwing:
		return a.Pivot.Len() + p.Position.Sub(a.Pivot).Len() + extent
	}
	return center + extent
}

// Bounds fills BoundingRadius and SuggestedCameraDistance from the primitive list.
func (d *Description) Bounds() {
	var r float32
	for _, p := range d.Primitives {
		r = math32.Max(r, p.Reach())
	}
	d.BoundingRadius = r
	d.SuggestedCameraDistance = math32.Max(4, 2.8*r)
}
