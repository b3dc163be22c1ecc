package pipeline

import (
	"viz-engine/internal/math3d"
)

// MaxChunkVertices is the most vertices one chunk holds, so 16-bit indices can address them.
const MaxChunkVertices = 65535

// Chunk is one draw call's worth of interleaved-free vertex data.
type Chunk struct {
	// Positions and Normals hold XYZ triples; Colors holds RGBA bytes.
	Positions []float32
	Normals   []float32
	Colors    []uint8
	Indices   []uint16
}

// Vertices returns the number of vertices in c.
func (c *Chunk) Vertices() int { return len(c.Positions) / 3 }

// Batch accumulates transformed meshes for one frame. The zero value is empty and ready.
type Batch struct {
	Chunks []Chunk
}

// Reset empties b, keeping allocated chunks for reuse.
func (b *Batch) Reset() {
	for i := range b.Chunks {
		c := &b.Chunks[i]
		c.Positions, c.Normals, c.Colors, c.Indices = c.Positions[:0], c.Normals[:0], c.Colors[:0], c.Indices[:0]
	}
	b.Chunks = b.Chunks[:0]
}

// Add appends m transformed by xf in color c. A mesh never straddles two chunks.
func (b *Batch) Add(m Mesh, xf math3d.Mat4, c math3d.Color) {
	n := len(m.Positions)
	if n == 0 || n > MaxChunkVertices {
		return
	}
	if len(b.Chunks) == 0 || b.Chunks[len(b.Chunks)-1].Vertices()+n > MaxChunkVertices {
		if len(b.Chunks) < cap(b.Chunks) {
			// Reuse a chunk left over from an earlier frame; Reset already truncated it.
			b.Chunks = b.Chunks[:len(b.Chunks)+1]
		} else {
			b.Chunks = append(b.Chunks, Chunk{})
		}
	}
	ch := &b.Chunks[len(b.Chunks)-1]
	base := uint16(ch.Vertices())
	nm := normalMatrix(xf)
	for i, p := range m.Positions {
		w := xf.MulPoint(p)
		nv := nm.MulDir(m.Normals[i]).Normalize()
		ch.Positions = append(ch.Positions, w.X, w.Y, w.Z)
		ch.Normals = append(ch.Normals, nv.X, nv.Y, nv.Z)
		ch.Colors = append(ch.Colors, c.R, c.G, c.B, c.A)
	}
	for _, idx := range m.Indices {
		ch.Indices = append(ch.Indices, base+idx)
	}
}

// Vertices returns the total vertex count.
func (b *Batch) Vertices() int {
	n := 0
	for i := range b.Chunks {
		n += b.Chunks[i].Vertices()
	}
	return n
}

// Triangles returns the total triangle count.
func (b *Batch) Triangles() int {
	n := 0
	for i := range b.Chunks {
		n += len(b.Chunks[i].Indices) / 3
	}
	return n
}

// normalMatrix returns the cofactor matrix of xf's upper 3×3, which maps normals up to a
// positive scale when xf has no reflection.
func normalMatrix(xf math3d.Mat4) math3d.Mat4 {
	c0 := math3d.V3(xf[0], xf[1], xf[2])
	c1 := math3d.V3(xf[4], xf[5], xf[6])
	c2 := math3d.V3(xf[8], xf[9], xf[10])
	return math3d.BasisMat(c1.Cross(c2), c2.Cross(c0), c0.Cross(c1))
}
