// Package camera holds the orbit camera state read by the compositor and the input
// controller that mutates it.
package camera

import (
	"github.com/chewxy/math32"

	"viz-engine/internal/math3d"
)

// Limits applied by Clamp.
const (
	MinDistance = 0.5
	MaxDistance = 200
	MaxPitch    = 89 * math3d.DegToRad
)

// State is an orbit camera looking at Target from Distance away. Yaw turns about +Y;
// positive Pitch raises the eye above the target.
type State struct {
	Distance float32     `yaml:"distance"`
	Yaw      float32     `yaml:"yaw"`
	Pitch    float32     `yaml:"pitch"`
	Target   math3d.Vec3 `yaml:"target"`
}

// Default returns a camera slightly above the target at the given distance.
func Default(distance float32) State {
	s := State{Distance: distance, Pitch: 20 * math3d.DegToRad}
	s.Clamp()
	return s
}

// Clamp keeps distance and pitch within limits and wraps yaw.
func (s *State) Clamp() {
	if !math3d.IsFinite(s.Distance) {
		s.Distance = MinDistance
	}
	s.Distance = math3d.Clamp(s.Distance, MinDistance, MaxDistance)
	s.Pitch = math3d.Clamp(s.Pitch, -MaxPitch, MaxPitch)
	s.Yaw = math3d.WrapAngle(s.Yaw)
}

// Orbit turns the camera around the target.
func (s *State) Orbit(dYaw, dPitch float32) {
	s.Yaw += dYaw
	s.Pitch += dPitch
	s.Clamp()
}

// Zoom multiplies the distance by factor; factor 0.5 halves it.
func (s *State) Zoom(factor float32) {
	if factor > 0 {
		s.Distance *= factor
	}
	s.Clamp()
}

// Pan moves the target within the view plane, scaled by distance.
func (s *State) Pan(dx, dy float32) {
	right, up := s.axes()
	s.Target = s.Target.Add(right.Scale(dx * s.Distance)).Add(up.Scale(dy * s.Distance))
}

// Eye returns the camera position in world space.
func (s State) Eye() math3d.Vec3 {
	sy, cy := math32.Sincos(s.Yaw)
	sp, cp := math32.Sincos(s.Pitch)
	return s.Target.Add(math3d.V3(cp*sy, sp, cp*cy).Scale(s.Distance))
}

// View returns the world → view transform: translate by -Target, turn by -Yaw about Y,
// tilt by Pitch about X, then push back by Distance along -Z.
func (s State) View() math3d.Mat4 {
	return math3d.Translate(math3d.V3(0, 0, -s.Distance)).
		Mul(math3d.Rotate(math3d.UnitX, s.Pitch)).
		Mul(math3d.Rotate(math3d.UnitY, -s.Yaw)).
		Mul(math3d.Translate(s.Target.Neg()))
}

// axes returns the camera's right and up vectors in world space.
func (s State) axes() (right, up math3d.Vec3) {
	sy, cy := math32.Sincos(s.Yaw)
	sp, cp := math32.Sincos(s.Pitch)
	right = math3d.V3(cy, 0, -sy)
	up = math3d.V3(-sp*sy, cp, -sp*cy)
	return right, up
}
