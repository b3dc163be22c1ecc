// Package fonts locates TrueType/OpenType files for the info panel and turns them into
// font faces.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Exts are the font file extensions considered when scanning.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns candidate font directories relative to the working directory.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns slash-separated paths of all font files under dir, relative to dir.
// A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !isFontFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFontFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalizeForMatch lowercases and drops spaces, dashes and underscores.
func normalizeForMatch(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// Find resolves name to a font file. name may be an existing path or a family name such
// as "Inter" matched against files under dirs; a "Regular" file wins among several matches.
func Find(name string, dirs ...string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", os.ErrNotExist
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return name, nil
	}
	if len(dirs) == 0 {
		dirs = BaseDirs()
	}
	norm := normalizeForMatch(strings.TrimSuffix(name, filepath.Ext(name)))
	var matches []string
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if strings.Contains(normalizeForMatch(rel), norm) {
				matches = append(matches, filepath.Join(base, filepath.FromSlash(rel)))
			}
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("fonts: %q: %w", name, os.ErrNotExist)
	}
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m), "regular") {
			return m, nil
		}
	}
	return matches[0], nil
}

// Face returns a face of the given pixel size. An empty name uses the embedded Go Regular
// font. Sizes ≤ 0 use 13.
func Face(name string, size float64) (font.Face, error) {
	if size <= 0 {
		size = 13
	}
	data := goregular.TTF
	if name != "" {
		path, err := Find(name)
		if err != nil {
			return nil, err
		}
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("fonts: read %s: %w", path, err)
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", name, err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// FaceOrDefault is Face falling back to the built-in 7×13 bitmap face on any error.
func FaceOrDefault(name string, size float64) (font.Face, error) {
	f, err := Face(name, size)
	if err != nil {
		return basicfont.Face7x13, err
	}
	return f, nil
}

// IsMissing reports whether err means the named font was not found.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
