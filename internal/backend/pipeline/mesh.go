package pipeline

import (
	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// Mesh is an indexed triangle list in local space.
type Mesh struct {
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	Indices   []uint16
}

// Triangles returns the number of triangles in m.
func (m Mesh) Triangles() int { return len(m.Indices) / 3 }

// SphereMesh returns a unit-radius UV sphere centered on the origin.
func SphereMesh(rings, slices int) Mesh {
	rings = max(rings, 2)
	slices = max(slices, 3)
	var m Mesh
	for r := 0; r <= rings; r++ {
		theta := math32.Pi * float32(r) / float32(rings)
		st, ct := math32.Sincos(theta)
		for s := 0; s <= slices; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(slices)
			sp, cp := math32.Sincos(phi)
			n := math3d.V3(st*cp, ct, st*sp)
			m.Positions = append(m.Positions, n)
			m.Normals = append(m.Normals, n)
		}
	}
	row := slices + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a := uint16(r*row + s)
			b := uint16((r+1)*row + s)
			m.Indices = append(m.Indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return m
}

// CubeMesh returns a unit cube (side 1) centered on the origin with flat face normals.
func CubeMesh() Mesh {
	faces := []struct{ n, u, v math3d.Vec3 }{
		{math3d.UnitX, math3d.V3(0, 0, -1), math3d.UnitY},
		{math3d.UnitX.Neg(), math3d.UnitZ, math3d.UnitY},
		{math3d.UnitY, math3d.UnitX, math3d.V3(0, 0, -1)},
		{math3d.UnitY.Neg(), math3d.UnitX, math3d.UnitZ},
		{math3d.UnitZ, math3d.UnitX, math3d.UnitY},
		{math3d.UnitZ.Neg(), math3d.UnitX.Neg(), math3d.UnitY},
	}
	var m Mesh
	for i, f := range faces {
		c := f.n.Scale(0.5)
		for _, q := range [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}} {
			m.Positions = append(m.Positions, c.Add(f.u.Scale(q[0])).Add(f.v.Scale(q[1])))
			m.Normals = append(m.Normals, f.n)
		}
		base := uint16(i * 4)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}
