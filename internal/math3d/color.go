package math3d

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Color is a non-premultiplied 8-bit RGBA color. Written to YAML as "#rrggbbaa".
type Color color.NRGBA

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// NRGBA returns c as the standard library type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA(c)
}

// Opacity returns alpha in [0,1].
func (c Color) Opacity() float32 {
	return float32(c.A) / 255
}

// WithOpacity returns c with alpha set from o in [0,1].
func (c Color) WithOpacity(o float32) Color {
	c.A = uint8(Clamp(o, 0, 1)*255 + 0.5)
	return c
}

// Shade multiplies the RGB channels by f (clamped to [0,1] per channel), keeping alpha.
func (c Color) Shade(f float32) Color {
	mul := func(v uint8) uint8 {
		return uint8(Clamp(float32(v)*f, 0, 255))
	}
	return Color{mul(c.R), mul(c.G), mul(c.B), c.A}
}

// Mix blends toward o in CIE-L*a*b* space; alpha is interpolated linearly.
func (c Color) Mix(o Color, t float32) Color {
	a := c.colorful().BlendLab(o.colorful(), float64(t)).Clamped()
	r, g, b := a.RGB255()
	return Color{r, g, b, uint8(Lerp(float32(c.A), float32(o.A), t))}
}

// Floats returns the channels scaled to [0,1].
func (c Color) Floats() [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("math3d: color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("math3d: color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{r, g, b, alpha}, nil
}

// Hex parses a color literal and panics on malformed input. Used for built-in palettes.
func Hex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HSV builds an opaque color from hue in degrees and saturation/value in [0,1].
func HSV(h, s, v float32) Color {
	r, g, b := colorful.Hsv(float64(h), float64(s), float64(v)).Clamped().RGB255()
	return Color{r, g, b, 255}
}

// Spectrum returns the i-th of n evenly spaced hues from red to violet.
func Spectrum(i, n int) Color {
	if n <= 1 {
		return HSV(0, 0.8, 0.95)
	}
	return HSV(270*float32(i)/float32(n-1), 0.8, 0.95)
}

// MarshalYAML writes the color as a hex string.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// UnmarshalYAML reads a hex string.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
