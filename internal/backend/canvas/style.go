package canvas

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"viz-engine/internal/math3d"
)

// DefaultPanelCSS styles the info panel when no stylesheet is configured.
const DefaultPanelCSS = `
.panel   { background: #0b0f19b3; border: #9ad0ff66; left: 12px; top: 12px; padding: 8px; font-size: 14px; }
.title   { color: #ffffff; }
.subject { color: #9ad0ff; }
`

// Rule is one CSS rule: a simple selector and its declarations as raw strings.
type Rule struct {
	Selector string
	Props    map[string]string
}

// Stylesheet is an ordered rule list; later rules override earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// PanelStyle is the resolved info panel style.
type PanelStyle struct {
	Background   math3d.Color
	Border       math3d.Color
	HasBorder    bool
	TitleColor   math3d.Color
	SubjectColor math3d.Color
	Left, Top    int
	Padding      int
	FontSize     float64
}

// DefaultPanelStyle is the style used before any stylesheet applies.
func DefaultPanelStyle() PanelStyle {
	return PanelStyle{
		Background:   math3d.Hex("#000000aa"),
		TitleColor:   math3d.Hex("#ffffff"),
		SubjectColor: math3d.Hex("#cccccc"),
		Left:         12,
		Top:          12,
		Padding:      6,
		FontSize:     13,
	}
}

// ParseCSS parses simple ".class" and "#id" rules. At-rules and other selectors are skipped.
func ParseCSS(src string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	p := css.NewParser(parse.NewInputString(src), false)
	var cur *Rule
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && err != io.EOF {
				return sheet, fmt.Errorf("canvas: css: %w", err)
			}
			return sheet, nil
		case css.BeginRulesetGrammar:
			sel := strings.TrimSpace(tokensString(p.Values()))
			if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') {
				cur = nil
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: map[string]string{}})
			cur = &sheet.Rules[len(sheet.Rules)-1]
		case css.DeclarationGrammar:
			if cur != nil {
				cur.Props[strings.ToLower(string(data))] = strings.TrimSpace(tokensString(p.Values()))
			}
		case css.EndRulesetGrammar:
			cur = nil
		}
	}
}

func tokensString(ts []css.Token) string {
	var b strings.Builder
	for _, t := range ts {
		b.Write(t.Data)
	}
	return b.String()
}

// Props merges the declarations of every rule whose selector is sel, in order.
func (s *Stylesheet) Props(sel string) map[string]string {
	out := map[string]string{}
	if s == nil {
		return out
	}
	for _, r := range s.Rules {
		if r.Selector == sel {
			for k, v := range r.Props {
				out[k] = v
			}
		}
	}
	return out
}

// Panel resolves the .panel, .title and .subject rules over DefaultPanelStyle.
func (s *Stylesheet) Panel() PanelStyle {
	out := DefaultPanelStyle()
	for k, v := range s.Props(".panel") {
		switch k {
		case "background":
			if c, err := math3d.ParseHex(v); err == nil {
				out.Background = c
			}
		case "border":
			if c, err := math3d.ParseHex(v); err == nil {
				out.Border, out.HasBorder = c, true
			}
		case "color":
			if c, err := math3d.ParseHex(v); err == nil {
				out.TitleColor = c
			}
		case "left":
			if n, ok := ParsePx(v); ok {
				out.Left = int(n)
			}
		case "top":
			if n, ok := ParsePx(v); ok {
				out.Top = int(n)
			}
		case "padding":
			if n, ok := ParsePx(v); ok && n >= 0 {
				out.Padding = int(n)
			}
		case "font-size":
			if n, ok := ParsePx(v); ok && n > 0 {
				out.FontSize = n
			}
		}
	}
	if c, err := math3d.ParseHex(s.Props(".title")["color"]); err == nil {
		out.TitleColor = c
	}
	if c, err := math3d.ParseHex(s.Props(".subject")["color"]); err == nil {
		out.SubjectColor = c
	}
	return out
}

// ParsePx parses a number with an optional "px" suffix. Unitless values are pixels.
func ParsePx(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
