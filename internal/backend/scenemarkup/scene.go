package scenemarkup

import (
	"fmt"
	"math"

	"golang.org/x/net/html"

	"viz-engine/internal/camera"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

// Element ids in the generated scene.
const (
	RigID    = "camera-rig"
	CameraID = "camera"
	ModelID  = "model"
)

// PrimitiveID returns the id of the outermost entity of primitive i.
func PrimitiveID(i int) string {
	return fmt.Sprintf("p-%d", i)
}

// SceneOptions control scene-level attributes.
type SceneOptions struct {
	// FOV is the vertical field of view in radians.
	FOV        float32
	Background math3d.Color
	// Transparent leaves the canvas clear so a camera feed behind it shows through.
	Transparent bool
}

// Build returns the <a-scene> tree for desc viewed from cam. Each animation rule is attached
// once as an animation__* directive; the runtime interpolates from then on.
func Build(desc geometry.Description, cam camera.State, opts SceneOptions) *html.Node {
	scene := element("a-scene",
		"embedded", "",
		"vr-mode-ui", "enabled: false",
		"data-concept", string(desc.Concept),
	)
	if opts.Transparent {
		scene.Attr = append(scene.Attr, html.Attribute{Key: "renderer", Val: "alpha: true"})
	} else {
		scene.Attr = append(scene.Attr, html.Attribute{Key: "background", Val: "color: " + rgbHex(opts.Background)})
	}

	scene.AppendChild(element("a-entity", "light", "type: ambient; intensity: 0.35"))
	scene.AppendChild(element("a-entity", "light", "type: directional; intensity: 0.9", "position", "0.4 0.8 0.45"))

	rig := element("a-entity", "id", RigID)
	cameraNode := element("a-entity", "id", CameraID,
		"camera", fmt.Sprintf("fov: %s; active: true", num(opts.FOV*math3d.RadToDeg)),
		"look-controls", "enabled: false",
		"wasd-controls", "enabled: false",
	)
	setCamera(rig, cameraNode, cam)
	rig.AppendChild(cameraNode)
	scene.AppendChild(rig)

	model := element("a-entity", "id", ModelID)
	parent := model
	if desc.Spin != nil && desc.Spin.PeriodMs > 0 {
		parent = attachMotion(model, *desc.Spin, desc.Spin.Pivot, "animation__spin")
	}
	for i, p := range desc.Primitives {
		parent.AppendChild(primitiveNode(i, p))
	}
	scene.AppendChild(model)
	return scene
}

// CameraAttrs returns the rig position, rig rotation and camera position for cam.
func CameraAttrs(cam camera.State) (rigPos, rigRot, camPos string) {
	rigPos = vec(cam.Target)
	rigRot = fmt.Sprintf("%s %s 0", num(-cam.Pitch*math3d.RadToDeg), num(cam.Yaw*math3d.RadToDeg))
	camPos = fmt.Sprintf("0 0 %s", num(cam.Distance))
	return rigPos, rigRot, camPos
}

func setCamera(rig, cameraNode *html.Node, cam camera.State) {
	pos, rot, camPos := CameraAttrs(cam)
	setAttr(rig, "position", pos)
	setAttr(rig, "rotation", rot)
	setAttr(cameraNode, "position", camPos)
}

// attachMotion appends the entity chain that rotates its contents about a.Axis through pivot
// and returns the innermost entity, whose local frame equals parent's.
func attachMotion(parent *html.Node, a geometry.Animation, pivot math3d.Vec3, attr string) *html.Node {
	align := math3d.AlignY(a.Axis.AxisOr(math3d.UnitY))
	inv := align.Transpose()
	frame := element("a-entity", "position", vec(pivot), "rotation", rot(align))
	motion := element("a-entity")
	d := motionDirective(a)
	setAttr(motion, "rotation", joinNums(d.From))
	setAttr(motion, attr, d.String())
	unframe := element("a-entity", "position", vec(inv.MulDir(pivot.Neg())), "rotation", rot(inv))
	motion.AppendChild(unframe)
	frame.AppendChild(motion)
	parent.AppendChild(frame)
	return unframe
}

// motionDirective turns a rotate, orbit or swing rule into a tween of the Y rotation of an
// entity whose Y axis is the rule's axis.
func motionDirective(a geometry.Animation) Directive {
	if a.Rule == geometry.RuleSwing {
		amp := a.Amplitude * math3d.RadToDeg
		d := wave(a)
		d.Property = "rotation"
		d.From, d.To = []float32{0, -amp, 0}, []float32{0, amp, 0}
		return phased(d, a)
	}
	start := math3d.WrapAngle(a.Phase) * math3d.RadToDeg
	return Directive{
		Property: "rotation",
		From:     []float32{0, start, 0},
		To:       []float32{0, start + 360, 0},
		Dur:      float64(a.PeriodMs),
		Dir:      "normal",
		Loop:     true,
		Easing:   EaseLinear,
	}
}

// wave returns the timing of an alternating rule: half a period per pass.
func wave(a geometry.Animation) Directive {
	easing := EaseInOutSine
	if a.Easing == geometry.EaseLinear {
		easing = EaseLinear
	}
	return Directive{Dur: float64(a.PeriodMs) / 2, Dir: "alternate", Loop: true, Easing: easing}
}

// phased aligns an alternating directive, whose From/To are the wave's low and high values,
// with the rule's phase. The runtime has no start offset, so the phase becomes a delay
// until the next extreme: a phase in the first half period starts on the return pass
// (From and To swapped). The entity holds From for at most half a period.
func phased(d Directive, a geometry.Animation) Directive {
	p := float64(a.PeriodMs)
	frac := float64(a.Phase) / (2 * math.Pi)
	frac -= math.Floor(frac)
	switch {
	case frac == 0:
	case frac <= 0.5:
		d.From, d.To = d.To, d.From
		d.Delay = p * (0.5 - frac)
	default:
		d.Delay = p * (1 - frac)
	}
	return d
}

func primitiveNode(i int, p geometry.Primitive) *html.Node {
	body, rest, base := shape(p)
	a := p.Animation
	if a == nil || a.PeriodMs <= 0 {
		setAttr(body, "id", PrimitiveID(i))
		setAttr(body, "position", vec(p.Position))
		setAttr(body, "rotation", rot(rest))
		setAttr(body, "scale", vec(base))
		return body
	}

	switch a.Rule {
	case geometry.RuleRotate, geometry.RuleSwing, geometry.RuleOrbit:
		pivot := a.Pivot
		offset := p.Position.Sub(a.Pivot)
		if a.Rule == geometry.RuleOrbit {
			u, _ := math3d.Basis(a.Axis)
			pivot, offset = p.Position, u.Scale(a.Amplitude)
		}
		align := math3d.AlignY(a.Axis.AxisOr(math3d.UnitY))
		inv := align.Transpose()
		frame := element("a-entity", "id", PrimitiveID(i), "data-group", p.Group,
			"position", vec(pivot), "rotation", rot(align))
		motion := element("a-entity")
		d := motionDirective(*a)
		setAttr(motion, "rotation", joinNums(d.From))
		setAttr(motion, "animation__motion", d.String())
		setAttr(body, "position", vec(inv.MulDir(offset)))
		setAttr(body, "rotation", rot(inv.Mul(rest)))
		setAttr(body, "scale", vec(base))
		motion.AppendChild(body)
		frame.AppendChild(motion)
		return frame
	}

	setAttr(body, "id", PrimitiveID(i))
	setAttr(body, "position", vec(p.Position))
	setAttr(body, "rotation", rot(rest))
	setAttr(body, "scale", vec(base))
	d := wave(*a)
	switch a.Rule {
	case geometry.RuleScale:
		d.Property = "scale"
		d.From, d.To = vec3(base), vec3(base.Scale(1+a.Amplitude))
	case geometry.RuleFade:
		op := p.Color.Opacity()
		d.Property = "material.opacity"
		d.From, d.To = []float32{op}, []float32{math3d.Clamp(op+a.Amplitude, 0, 1)}
		setAttr(body, "transparent", "true")
	case geometry.RuleOscillate:
		d.Property = "position"
		d.From = vec3(p.Position)
		d.To = vec3(p.Position.Add(a.Axis.AxisOr(math3d.UnitY).Scale(a.Amplitude)))
	default:
		return body
	}
	setAttr(body, "animation__pulse", phased(d, *a).String())
	return body
}

// shape returns the entity for p's kind, its rest orientation (local +Y onto the primitive
// axis) and its base scale.
func shape(p geometry.Primitive) (*html.Node, math3d.Mat4, math3d.Vec3) {
	s := p.Size
	rest := math3d.AlignY(p.OrientAxis())
	base := math3d.V3(1, 1, 1)
	var n *html.Node
	switch p.Kind {
	case geometry.KindSphere, geometry.KindPoint:
		n = element("a-sphere", "radius", num(s.X))
		if p.Kind == geometry.KindPoint {
			n.Attr = append(n.Attr, html.Attribute{Key: "segments-width", Val: "8"}, html.Attribute{Key: "segments-height", Val: "6"})
		}
		if s.X > 0 && s.Y > 0 {
			z := s.Z
			if z <= 0 {
				z = s.X
			}
			base = math3d.V3(1, s.Y/s.X, z/s.X)
		}
	case geometry.KindCylinder, geometry.KindLine:
		n = element("a-cylinder", "radius", num(s.X), "height", num(s.Y))
	case geometry.KindCone:
		n = element("a-cone", "radius-bottom", num(s.X), "radius-top", "0", "height", num(s.Y))
	case geometry.KindRing:
		n = element("a-torus", "radius", num(s.X), "radius-tubular", num(s.Y))
		// The runtime's torus lies in its XY plane; turn its normal from +Z onto +Y first.
		rest = rest.Mul(math3d.Rotate(math3d.UnitX, -math.Pi/2))
	case geometry.KindBox:
		n = element("a-box", "width", num(s.X), "height", num(s.Y), "depth", num(s.Z))
	default:
		n = element("a-entity")
	}
	setAttr(n, "data-group", p.Group)
	setAttr(n, "color", rgbHex(p.Color))
	if p.Color.A < 255 {
		setAttr(n, "opacity", num(p.Color.Opacity()))
		setAttr(n, "transparent", "true")
	}
	return n, rest, base
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Attr returns the value of n's attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Find returns the element with the given id in the tree rooted at n, or nil.
func Find(n *html.Node, id string) *html.Node {
	if v, ok := Attr(n, "id"); ok && v == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := Find(c, id); f != nil {
			return f
		}
	}
	return nil
}

func vec(v math3d.Vec3) string {
	return joinNums(vec3(v))
}

func vec3(v math3d.Vec3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}

// rot formats m's rotation as the runtime's Euler angles in degrees.
func rot(m math3d.Mat4) string {
	e := m.EulerYXZ().Scale(math3d.RadToDeg)
	return vec(e)
}

func rgbHex(c math3d.Color) string {
	return c.Hex()[:7]
}
