package geometry

import (
	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// Hash-based lattice noise. Generators seed it with fixed constants so every description
// stays reproducible.

// hash3 maps integer coordinates to a pseudo-random float in [0,1].
func hash3(x, y, z, seed int32) float32 {
	n := x*374761393 + y*668265263 + z*2147483629 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

// valueNoise2D is smooth value noise in [0,1] over the hash lattice.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	sx := math3d.SmoothStep(x - float32(x0))
	sy := math3d.SmoothStep(y - float32(y0))

	v00 := hash3(x0, y0, 0, seed)
	v10 := hash3(x0+1, y0, 0, seed)
	v01 := hash3(x0, y0+1, 0, seed)
	v11 := hash3(x0+1, y0+1, 0, seed)

	return math3d.Lerp(math3d.Lerp(v00, v10, sx), math3d.Lerp(v01, v11, sx), sy)
}

// fractalNoise2D layers octaves of value noise (lacunarity 2, gain 0.5). Output is in [0,1].
func fractalNoise2D(x, y float32, seed int32, octaves int) float32 {
	var sum, norm float32
	amp, freq := float32(1), float32(1)
	for i := 0; i < octaves; i++ {
		sum += valueNoise2D(x*freq, y*freq, seed+int32(i)) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// scatter returns the i-th deterministic point in the spherical shell [rMin, rMax] around center.
func scatter(i int, seed int32, center math3d.Vec3, rMin, rMax float32) math3d.Vec3 {
	dir := randomDir(i, seed)
	r := math3d.Lerp(rMin, rMax, math32.Cbrt(hash3(int32(i), 2, 7, seed)))
	return center.Add(dir.Scale(r))
}

// randomDir returns the i-th deterministic unit vector.
func randomDir(i int, seed int32) math3d.Vec3 {
	u := hash3(int32(i), 0, 7, seed)
	v := hash3(int32(i), 1, 7, seed)
	z := 2*u - 1
	s := math32.Sqrt(math32.Max(0, 1-z*z))
	sin, cos := math32.Sincos(math3d.Tau * v)
	return math3d.V3(s*cos, z, s*sin)
}

// fibonacciSphere returns the i-th of n roughly uniform unit vectors.
func fibonacciSphere(i, n int) math3d.Vec3 {
	golden := math32.Pi * (3 - math32.Sqrt(5))
	y := 1 - 2*(float32(i)+0.5)/float32(n)
	r := math32.Sqrt(math32.Max(0, 1-y*y))
	sin, cos := math32.Sincos(golden * float32(i))
	return math3d.V3(r*cos, y, r*sin)
}
