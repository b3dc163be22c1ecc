package camera

import (
	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
)

// Controller applies user input to a State with inertia. Drag velocity decays toward zero
// and zoom eases toward its target distance, both through critically damped springs.
// It is not safe for concurrent use; the session owns it and steps it once per tick.
type Controller struct {
	state State
	home  State

	yaw, pitch zeroing
	zoomSpring harmonica.Spring
	zoomTarget float64
	zoomVel    float64
}

// zeroing animates a velocity toward 0 the same way for each rotation axis.
type zeroing struct {
	vel    float64
	accel  float64
	spring harmonica.Spring
}

func (z *zeroing) step() float32 {
	v := z.vel
	z.vel, z.accel = z.spring.Update(z.vel, z.accel, 0)
	return float32(v)
}

// settleEpsilon is the velocity (radians or units per tick) below which motion stops.
const settleEpsilon = 1e-4

// NewController returns a controller stepping at fps ticks per second, starting from home.
func NewController(home State, fps int) *Controller {
	if fps <= 0 {
		fps = 60
	}
	dt := harmonica.FPS(fps)
	home.Clamp()
	return &Controller{
		state:      home,
		home:       home,
		yaw:        zeroing{spring: harmonica.NewSpring(dt, 4.0, 1.0)},
		pitch:      zeroing{spring: harmonica.NewSpring(dt, 4.0, 1.0)},
		zoomSpring: harmonica.NewSpring(dt, 8.0, 1.0),
		zoomTarget: float64(home.Distance),
	}
}

// State returns the current camera state.
func (c *Controller) State() State {
	return c.state
}

// Drag orbits immediately by (dYaw, dPitch) radians and keeps that motion as velocity
// so the view coasts after the drag ends.
func (c *Controller) Drag(dYaw, dPitch float32) {
	c.state.Orbit(dYaw, dPitch)
	c.yaw.vel, c.yaw.accel = float64(dYaw), 0
	c.pitch.vel, c.pitch.accel = float64(dPitch), 0
}

// Nudge orbits by exactly (dYaw, dPitch) radians for discrete input such as a key press.
// Any coasting from an earlier drag stops.
func (c *Controller) Nudge(dYaw, dPitch float32) {
	c.state.Orbit(dYaw, dPitch)
	c.yaw.vel, c.yaw.accel = 0, 0
	c.pitch.vel, c.pitch.accel = 0, 0
}

// ZoomBy multiplies the target distance by factor; the camera eases there over a few ticks.
func (c *Controller) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	next := c.state
	next.Distance = float32(c.zoomTarget) * factor
	next.Clamp()
	c.zoomTarget = float64(next.Distance)
}

// Pan moves the target immediately.
func (c *Controller) Pan(dx, dy float32) {
	c.state.Pan(dx, dy)
}

// Set replaces the state without easing.
func (c *Controller) Set(s State) {
	s.Clamp()
	c.state = s
	c.zoomTarget = float64(s.Distance)
	c.stop()
}

// Reset returns to the home state.
func (c *Controller) Reset() {
	c.Set(c.home)
}

// SetHome changes the state Reset returns to and jumps there.
func (c *Controller) SetHome(s State) {
	s.Clamp()
	c.home = s
	c.Set(s)
}

func (c *Controller) stop() {
	c.yaw.vel, c.yaw.accel = 0, 0
	c.pitch.vel, c.pitch.accel = 0, 0
	c.zoomVel = 0
}

// Step advances inertia and zoom easing by one tick and returns the new state.
func (c *Controller) Step() State {
	if c.Settled() {
		return c.state
	}
	c.state.Orbit(c.yaw.step(), c.pitch.step())

	d, v := c.zoomSpring.Update(float64(c.state.Distance), c.zoomVel, c.zoomTarget)
	c.state.Distance, c.zoomVel = float32(d), v
	if math32.Abs(c.state.Distance-float32(c.zoomTarget)) < settleEpsilon && math32.Abs(float32(v)) < settleEpsilon {
		c.state.Distance, c.zoomVel = float32(c.zoomTarget), 0
	}
	c.state.Clamp()
	return c.state
}

// Settled reports whether no inertia or zoom easing is pending.
func (c *Controller) Settled() bool {
	return abs(c.yaw.vel) < settleEpsilon &&
		abs(c.pitch.vel) < settleEpsilon &&
		abs(c.zoomVel) < settleEpsilon &&
		abs(float64(c.state.Distance)-c.zoomTarget) < settleEpsilon
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
