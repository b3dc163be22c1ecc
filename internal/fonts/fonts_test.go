package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFonts(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, goregular.TTF, 0644))
	}
	return dir
}

func TestScanDir(t *testing.T) {
	dir := writeFonts(t, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf", "notes.txt")
	list, err := ScanDir(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf"}, list)

	none, err := ScanDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindPrefersRegular(t *testing.T) {
	dir := writeFonts(t, "Inter/Inter-Bold.ttf", "Inter/Inter-Regular.ttf")
	path, err := Find("inter", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Inter", "Inter-Regular.ttf"), path)

	_, err = Find("Roboto", dir)
	assert.True(t, IsMissing(err))
}

func TestFaceDefaultsToGoRegular(t *testing.T) {
	f, err := Face("", 16)
	require.NoError(t, err)
	assert.Greater(t, font.MeasureString(f, "Atomic Structure").Ceil(), 0)

	fallback, err := FaceOrDefault("no-such-font", 16)
	assert.Error(t, err)
	assert.Equal(t, font.Face(basicfont.Face7x13), fallback)
}
