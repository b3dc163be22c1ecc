package geometry

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes a stable YAML snapshot of d.
func (d Description) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("geometry: encode %s: %w", d.Concept, err)
	}
	return enc.Close()
}

// Snapshot returns the YAML snapshot of d as a string.
func (d Description) Snapshot() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteYAML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadYAML parses a snapshot produced by WriteYAML.
func ReadYAML(r io.Reader) (Description, error) {
	var d Description
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Description{}, fmt.Errorf("geometry: decode snapshot: %w", err)
	}
	return d, nil
}

// Counts returns the number of primitives per group, in first-seen order.
func (d Description) Counts() []GroupCount {
	var out []GroupCount
	idx := make(map[string]int)
	for _, p := range d.Primitives {
		i, ok := idx[p.Group]
		if !ok {
			i = len(out)
			idx[p.Group] = i
			out = append(out, GroupCount{Group: p.Group})
		}
		out[i].Count++
	}
	return out
}

// GroupCount is one row of Description.Counts.
type GroupCount struct {
	Group string
	Count int
}
