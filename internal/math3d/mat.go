package math3d

import "github.com/chewxy/math32"

// Mat4 is a 4×4 matrix stored column-major (element [col*4+row]), the layout GLSL
// uniforms and raylib's M0..M15 naming expect.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(t Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// ScaleMat returns a non-uniform scale matrix.
func ScaleMat(s Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s.X, s.Y, s.Z
	return m
}

// Rotate returns a rotation of angle radians about axis.
func Rotate(axis Vec3, angle float32) Mat4 {
	a := axis.AxisOr(UnitY)
	s, c := math32.Sincos(angle)
	t := 1 - c
	x, y, z := a.X, a.Y, a.Z
	return Mat4{
		x*x*t + c, y*x*t + z*s, z*x*t - y*s, 0,
		x*y*t - z*s, y*y*t + c, z*y*t + x*s, 0,
		x*z*t + y*s, y*z*t - x*s, z*z*t + c, 0,
		0, 0, 0, 1,
	}
}

// BasisMat returns the matrix whose columns are the given axes, mapping local X/Y/Z onto them.
func BasisMat(x, y, z Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m·o (o is applied first).
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// MulPoint transforms p as a point (w = 1). Projective matrices are not divided.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// MulDir transforms d as a direction (w = 0).
func (m Mat4) MulDir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Perspective returns an OpenGL-style projection with vertical field of view fovy (radians).
func Perspective(fovy, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovy/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a right-handed view matrix.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// AlignY returns the rotation taking +Y onto axis, composed as Rx·Rz from EulerFromY.
func AlignY(axis Vec3) Mat4 {
	e := EulerFromY(axis)
	return Rotate(UnitX, e.X).Mul(Rotate(UnitZ, e.Z))
}

// Transpose returns mᵀ; for a pure rotation this is its inverse.
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			r[row*4+col] = m[col*4+row]
		}
	}
	return r
}

// EulerYXZ decomposes the rotation part of m into angles (x, y, z) in radians such that
// m = Ry(y)·Rx(x)·Rz(z), the order declarative scene runtimes apply entity rotations in.
func (m Mat4) EulerYXZ() Vec3 {
	m23 := m[9]
	x := math32.Asin(Clamp(-m23, -1, 1))
	if math32.Abs(m23) < 0.9999999 {
		return Vec3{x, math32.Atan2(m[8], m[10]), math32.Atan2(m[1], m[5])}
	}
	return Vec3{x, math32.Atan2(-m[2], m[0]), 0}
}
