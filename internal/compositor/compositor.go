// Package compositor resolves a geometry description against the animation clock and the
// camera into a Frame: every primitive's world pose and view-space position, in description
// order, ready for any back end.
package compositor

import (
	"fmt"
	"sync"

	"viz-engine/internal/animation"
	"viz-engine/internal/camera"
	"viz-engine/internal/geometry"
	"viz-engine/internal/logger"
	"viz-engine/internal/math3d"
)

// Projection selects how Frame.Project maps view space to the screen.
type Projection string

const (
	// Perspective divides by each item's own depth.
	Perspective Projection = "perspective"
	// WeakPerspective scales every item by focal/distance, so sizes follow zoom exactly.
	WeakPerspective Projection = "weak"
)

// Defaults for a zero Compositor.
const (
	DefaultFOV  = 50 * math3d.DegToRad
	DefaultNear = 0.05
)

// Compositor builds frames. The zero value uses perspective projection with DefaultFOV.
type Compositor struct {
	Projection Projection
	// FOV is the vertical field of view in radians.
	FOV  float32
	Near float32
	Log  *logger.Logger

	mu     sync.Mutex
	warned map[string]bool
}

// Compose resolves desc at elapsedMs as seen from cam. Items keep the description order;
// a primitive whose pose is not finite is kept with Visible false and Err set.
func (c *Compositor) Compose(desc geometry.Description, cam camera.State, elapsedMs float64) Frame {
	model := animation.ModelMatrix(desc, elapsedMs)
	view := cam.View()
	f := Frame{
		Concept:    desc.Concept,
		Title:      desc.Title,
		ElapsedMs:  elapsedMs,
		Camera:     cam,
		Model:      model,
		View:       view,
		Projection: c.projection(),
		FOV:        c.fov(),
		Near:       c.near(),
		Items:      make([]Item, len(desc.Primitives)),
		Geometry:   &desc,
	}
	for i, p := range desc.Primitives {
		item := resolve(i, p, model, view, elapsedMs)
		if item.Err != nil {
			c.warn(desc.Concept, item)
		}
		f.Items[i] = item
	}
	return f
}

func resolve(i int, p geometry.Primitive, model, view math3d.Mat4, elapsedMs float64) Item {
	pose := animation.Evaluate(p, elapsedMs)
	orient := model.Mul(pose.Rotation).Mul(math3d.AlignY(p.OrientAxis()))
	world := model.MulPoint(pose.Position)
	item := Item{
		Index:     i,
		Kind:      p.Kind,
		Group:     p.Group,
		World:     world,
		WorldAxis: model.MulDir(pose.Axis),
		Orient:    orient,
		View:      view.MulPoint(world),
		ViewAxis:  view.MulDir(model.MulDir(pose.Axis)),
		Size:      p.Size.Scale(pose.Scale),
		Scale:     pose.Scale,
		Angle:     pose.Angle,
		Opacity:   pose.Opacity,
		Color:     p.Color.WithOpacity(pose.Opacity),
		Visible:   true,
	}
	if err := item.check(); err != nil {
		item.Err = err
		item.Visible = false
	}
	return item
}

func (it Item) check() error {
	switch {
	case !it.World.IsFinite() || !it.View.IsFinite():
		return fmt.Errorf("compositor: primitive %d (%s): non-finite position %v", it.Index, it.Group, it.World)
	case !it.ViewAxis.IsFinite():
		return fmt.Errorf("compositor: primitive %d (%s): non-finite axis", it.Index, it.Group)
	case !it.Size.IsFinite() || !math3d.IsFinite(it.Scale):
		return fmt.Errorf("compositor: primitive %d (%s): non-finite size", it.Index, it.Group)
	case !math3d.IsFinite(it.Opacity):
		return fmt.Errorf("compositor: primitive %d (%s): non-finite opacity", it.Index, it.Group)
	}
	return nil
}

// warn logs a faulty primitive once per concept and index.
func (c *Compositor) warn(concept geometry.ConceptID, it Item) {
	if c.Log == nil {
		return
	}
	key := fmt.Sprintf("%s#%d", concept, it.Index)
	c.mu.Lock()
	if c.warned == nil {
		c.warned = make(map[string]bool)
	}
	seen := c.warned[key]
	c.warned[key] = true
	c.mu.Unlock()
	if !seen {
		c.Log.Warn("primitive skipped", "concept", string(concept), "index", it.Index, "group", it.Group, "err", it.Err)
	}
}

func (c *Compositor) projection() Projection {
	if c.Projection == WeakPerspective {
		return WeakPerspective
	}
	return Perspective
}

func (c *Compositor) fov() float32 {
	if c.FOV <= 0 || c.FOV >= 179*math3d.DegToRad {
		return DefaultFOV
	}
	return c.FOV
}

func (c *Compositor) near() float32 {
	if c.Near <= 0 {
		return DefaultNear
	}
	return c.Near
}
