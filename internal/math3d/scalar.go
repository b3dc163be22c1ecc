package math3d

import (
	"strconv"

	"github.com/chewxy/math32"
)

const (
	// Tau is one full turn in radians.
	Tau = 2 * math32.Pi
	// DegToRad converts degrees to radians.
	DegToRad = math32.Pi / 180
	// RadToDeg converts radians to degrees.
	RadToDeg = 180 / math32.Pi
)

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SmoothStep is cubic easing 3t^2 - 2t^3 on [0,1].
func SmoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// WrapAngle maps a to [0, 2π).
func WrapAngle(a float32) float32 {
	a = math32.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	return a
}

// FormatFloat prints f with the fewest digits that round-trip at float32 precision.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
