package scenemarkup

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Easing names understood by the scene runtime.
const (
	EaseLinear    = "linear"
	EaseInOutSine = "easeInOutSine"
)

// Directive is one looping tween attached to an entity as an animation__<name> attribute.
// The runtime interpolates Property from From to To over Dur milliseconds after Delay; with
// Dir "alternate" every other pass runs backwards.
type Directive struct {
	Property string
	From, To []float32
	Dur      float64
	Delay    float64
	Dir      string
	Loop     bool
	Easing   string
}

// String formats d in the runtime's "key: value; ..." attribute syntax.
func (d Directive) String() string {
	parts := []string{
		"property: " + d.Property,
		"from: " + joinNums(d.From),
		"to: " + joinNums(d.To),
		"dur: " + strconv.FormatFloat(d.Dur, 'f', -1, 64),
	}
	if d.Delay > 0 {
		parts = append(parts, "delay: "+strconv.FormatFloat(d.Delay, 'f', -1, 64))
	}
	dir := d.Dir
	if dir == "" {
		dir = "normal"
	}
	parts = append(parts, "dir: "+dir, "loop: "+strconv.FormatBool(d.Loop), "easing: "+d.Easing)
	return strings.Join(parts, "; ")
}

// ParseDirective reads the attribute syntax produced by String.
func ParseDirective(s string) (Directive, error) {
	d := Directive{Dir: "normal", Easing: EaseLinear}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			return d, fmt.Errorf("scenemarkup: directive %q: missing ':' in %q", s, part)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		var err error
		switch key {
		case "property":
			d.Property = val
		case "from":
			d.From, err = parseNums(val)
		case "to":
			d.To, err = parseNums(val)
		case "dur":
			d.Dur, err = strconv.ParseFloat(val, 64)
		case "delay":
			d.Delay, err = strconv.ParseFloat(val, 64)
		case "dir":
			d.Dir = val
		case "loop":
			d.Loop, err = strconv.ParseBool(val)
		case "easing":
			d.Easing = val
		}
		if err != nil {
			return d, fmt.Errorf("scenemarkup: directive %s: %w", key, err)
		}
	}
	if len(d.From) != len(d.To) {
		return d, fmt.Errorf("scenemarkup: directive %q: from/to size mismatch", s)
	}
	return d, nil
}

// Period returns how long the directive takes to return to its starting value.
func (d Directive) Period() float64 {
	if d.Dir == "alternate" {
		return 2 * d.Dur
	}
	return d.Dur
}

// ValueAt returns the value the runtime shows at elapsedMs after the entity was mounted.
func (d Directive) ValueAt(elapsedMs float64) []float32 {
	out := make([]float32, len(d.From))
	copy(out, d.From)
	t := elapsedMs - d.Delay
	if t <= 0 || d.Dur <= 0 {
		return out
	}
	pass := math.Floor(t / d.Dur)
	x := t/d.Dur - pass
	if !d.Loop && pass >= 1 {
		x = 1
		if d.Dir == "alternate" {
			x = 0
		}
	} else if d.Dir == "alternate" && int64(pass)%2 == 1 {
		x = 1 - x
	}
	e := ease(d.Easing, x)
	for i := range out {
		out[i] = float32(float64(d.From[i]) + (float64(d.To[i])-float64(d.From[i]))*e)
	}
	return out
}

func ease(name string, x float64) float64 {
	if name == EaseInOutSine {
		return (1 - math.Cos(math.Pi*x)) / 2
	}
	return x
}

func num(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func joinNums(vs []float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return strings.Join(parts, " ")
}

func parseNums(s string) ([]float32, error) {
	fields := strings.Fields(s)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
