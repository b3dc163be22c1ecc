// Package math3d holds the small float32 vector, matrix and color types shared by the
// geometry, animation, compositing and render packages.
package math3d

import (
	"fmt"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

// Vec3 is a 3-component float32 vector. Model space is right-handed with +Y up.
type Vec3 struct {
	X, Y, Z float32
}

// Common axes.
var (
	Zero  = Vec3{}
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Neg() Vec3      { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// Lerp interpolates between v and o.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{Lerp(v.X, o.X, t), Lerp(v.Y, o.Y, t), Lerp(v.Z, o.Z, t)}
}

// AxisOr returns the normalized v, or fallback when v is zero.
func (v Vec3) AxisOr(fallback Vec3) Vec3 {
	if v.IsZero() {
		return fallback
	}
	return v.Normalize()
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// RotateAxis rotates v about the unit axis by angle radians (Rodrigues' formula).
func (v Vec3) RotateAxis(axis Vec3, angle float32) Vec3 {
	if angle == 0 {
		return v
	}
	k := axis.Normalize()
	s, c := math32.Sincos(angle)
	return v.Scale(c).
		Add(k.Cross(v).Scale(s)).
		Add(k.Scale(k.Dot(v) * (1 - c)))
}

// Basis returns an orthonormal pair (u, v) spanning the plane perpendicular to axis,
// oriented so that u × v = axis. For +Y it yields u = +X, v = -Z.
func Basis(axis Vec3) (u, v Vec3) {
	n := axis.AxisOr(UnitY)
	ref := UnitZ
	if math32.Abs(n.Z) > 0.99 {
		ref = UnitX
	}
	u = n.Cross(ref).Normalize()
	v = n.Cross(u)
	return u, v
}

// EulerFromY returns XYZ-order Euler angles (radians) of the rotation taking +Y onto axis.
// The Y component is always zero.
func EulerFromY(axis Vec3) Vec3 {
	a := axis.AxisOr(UnitY)
	gamma := math32.Asin(Clamp(-a.X, -1, 1))
	alpha := math32.Atan2(a.Z, a.Y)
	return Vec3{alpha, 0, gamma}
}

// MarshalYAML writes the vector as a flow sequence [x, y, z].
func (v Vec3) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: FormatFloat(c)})
	}
	return n, nil
}

// UnmarshalYAML reads a sequence of one to three numbers.
func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	var xs []float32
	if err := value.Decode(&xs); err != nil {
		return fmt.Errorf("math3d: vec3: %w", err)
	}
	if len(xs) == 0 || len(xs) > 3 {
		return fmt.Errorf("math3d: vec3 needs 1 to 3 components, got %d", len(xs))
	}
	*v = Vec3{}
	dst := [3]*float32{&v.X, &v.Y, &v.Z}
	for i, x := range xs {
		*dst[i] = x
	}
	return nil
}
