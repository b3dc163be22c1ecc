package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"viz-engine/internal/camera"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

// Target is what the viewer commands act on; *session.Session implements it.
type Target interface {
	SetConcept(name string) geometry.Description
	SetSubject(subject string)
	Input(fn func(*camera.Controller))
}

// Viewer returns a registry with the console commands of the viewer. Replies are written
// to out, one line each.
func Viewer(t Target, lib *geometry.Library, out io.Writer) *Registry {
	r := NewRegistry()

	conceptFS := flag.NewFlagSet("concept", flag.ContinueOnError)
	r.Register("concept", "concept <name>", conceptFS, func() error {
		name := strings.Join(conceptFS.Args(), " ")
		if name == "" {
			return errors.New("concept: missing name")
		}
		d := t.SetConcept(name)
		if d.Fallback {
			fmt.Fprintf(out, "unknown concept %q, showing %s\n", name, d.Title)
		} else {
			fmt.Fprintf(out, "showing %s\n", d.Title)
		}
		return nil
	})

	conceptsFS := flag.NewFlagSet("concepts", flag.ContinueOnError)
	r.Register("concepts", "concepts", conceptsFS, func() error {
		for _, id := range lib.Concepts() {
			fmt.Fprintf(out, "%s (%s)\n", id, strings.Join(lib.Aliases(id), ", "))
		}
		return nil
	})

	subjectFS := flag.NewFlagSet("subject", flag.ContinueOnError)
	r.Register("subject", "subject <label>", subjectFS, func() error {
		label := geometry.DisplayName(strings.Join(subjectFS.Args(), " "))
		t.SetSubject(label)
		fmt.Fprintf(out, "subject %q\n", label)
		return nil
	})

	zoomFS := flag.NewFlagSet("zoom", flag.ContinueOnError)
	r.Register("zoom", "zoom <factor>  (0.5 moves twice as close)", zoomFS, func() error {
		if zoomFS.NArg() != 1 {
			return errors.New("zoom: want one factor")
		}
		f, err := strconv.ParseFloat(zoomFS.Arg(0), 32)
		if err != nil || f <= 0 {
			return fmt.Errorf("zoom: bad factor %q", zoomFS.Arg(0))
		}
		t.Input(func(c *camera.Controller) { c.ZoomBy(float32(f)) })
		return nil
	})

	orbitFS := flag.NewFlagSet("orbit", flag.ContinueOnError)
	yaw := orbitFS.Float64("yaw", 0, "degrees to turn about the vertical axis")
	pitch := orbitFS.Float64("pitch", 0, "degrees to raise the eye")
	r.Register("orbit", "orbit [-yaw deg] [-pitch deg]", orbitFS, func() error {
		dy, dp := float32(*yaw)*math3d.DegToRad, float32(*pitch)*math3d.DegToRad
		*yaw, *pitch = 0, 0
		t.Input(func(c *camera.Controller) {
			s := c.State()
			s.Orbit(dy, dp)
			c.Set(s)
		})
		return nil
	})

	panFS := flag.NewFlagSet("pan", flag.ContinueOnError)
	px := panFS.Float64("x", 0, "horizontal pan, in view widths")
	py := panFS.Float64("y", 0, "vertical pan, in view heights")
	r.Register("pan", "pan [-x n] [-y n]", panFS, func() error {
		dx, dy := float32(*px), float32(*py)
		*px, *py = 0, 0
		t.Input(func(c *camera.Controller) { c.Pan(dx, dy) })
		return nil
	})

	resetFS := flag.NewFlagSet("reset", flag.ContinueOnError)
	r.Register("reset", "reset", resetFS, func() error {
		t.Input(func(c *camera.Controller) { c.Reset() })
		return nil
	})

	helpFS := flag.NewFlagSet("help", flag.ContinueOnError)
	r.Register("help", "help", helpFS, func() error {
		for _, name := range r.Names() {
			fmt.Fprintf(out, ":%s\n", r.Usage(name))
		}
		return nil
	})

	return r
}
