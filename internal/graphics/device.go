package graphics

import (
	"errors"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"viz-engine/internal/backend/pipeline"
	"viz-engine/internal/math3d"
)

// device runs the pipeline back end's chunks through raylib. Each chunk is uploaded as a
// Go-managed mesh, drawn once and unloaded; the window's 2D matrices are restored afterwards.
// All calls must happen on the window thread, which the window's scheduler guarantees.
type device struct {
	shader     rl.Shader
	mtl        rl.Material
	lightLoc   int32
	ambientLoc int32
	ready      bool
}

func (d *device) Init(vertexSrc, fragmentSrc string) error {
	if !rl.IsWindowReady() {
		return errors.New("graphics: window not open")
	}
	shader := rl.LoadShaderFromMemory(vertexSrc, fragmentSrc)
	if !rl.IsShaderValid(shader) {
		return errors.New("graphics: shader failed to compile")
	}
	d.shader = shader
	d.mtl = rl.LoadMaterialDefault()
	d.mtl.Shader = shader
	d.lightLoc = rl.GetShaderLocation(shader, "lightDir")
	d.ambientLoc = rl.GetShaderLocation(shader, "ambient")
	d.ready = true
	return nil
}

func (d *device) Draw(chunks []pipeline.Chunk, u pipeline.Uniforms) error {
	if !d.ready {
		return errors.New("graphics: device not initialized")
	}
	rl.ClearBackground(color.RGBA(u.Clear.NRGBA()))
	// Flush queued 2D work before switching matrices.
	rl.DrawRenderBatchActive()
	proj, view := rl.GetMatrixProjection(), rl.GetMatrixModelview()
	rl.SetMatrixProjection(matrix(u.Projection))
	rl.SetMatrixModelview(matrix(u.View))

	light := []float32{u.LightDir.X, u.LightDir.Y, u.LightDir.Z}
	if d.lightLoc >= 0 {
		rl.SetShaderValue(d.shader, d.lightLoc, light, rl.ShaderUniformVec3)
	}
	if d.ambientLoc >= 0 {
		rl.SetShaderValue(d.shader, d.ambientLoc, []float32{u.Ambient}, rl.ShaderUniformFloat)
	}

	rl.EnableDepthTest()
	model := matrix(u.Model)
	for i := range chunks {
		c := &chunks[i]
		if len(c.Indices) == 0 {
			continue
		}
		mesh := rl.Mesh{
			VertexCount:   int32(c.Vertices()),
			TriangleCount: int32(len(c.Indices) / 3),
			Vertices:      &c.Positions[0],
			Normals:       &c.Normals[0],
			Colors:        &c.Colors[0],
			Indices:       &c.Indices[0],
		}
		rl.UploadMesh(&mesh, false)
		rl.DrawMesh(mesh, d.mtl, model)
		rl.UnloadMesh(&mesh)
	}
	rl.DisableDepthTest()

	rl.SetMatrixProjection(proj)
	rl.SetMatrixModelview(view)
	return nil
}

func (d *device) Close() error {
	if d.ready {
		rl.UnloadShader(d.shader)
		d.ready = false
	}
	return nil
}

// matrix converts a column-major Mat4 to raylib's named-element layout.
func matrix(m math3d.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}
