package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "viewer.yaml")
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Load must not create the file")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "viewer.yaml")
	p := Default()
	p.Concept = "DNA Helix"
	p.Backend = "markup"
	p.Camera = CameraPrefs{Distance: 12, YawDeg: 30, PitchDeg: -10}
	p.ShowFPS = true
	p.AcquireTimeout = 3 * time.Second
	require.NoError(t, Save(path, p))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concept: solar system\nfps: 30\nacquire_timeout: 2s\n"), 0644))
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "solar system", p.Concept)
	assert.Equal(t, 30, p.FPS)
	assert.Equal(t, 2*time.Second, p.AcquireTimeout)
	assert.Equal(t, Default().Backend, p.Backend)
	assert.Equal(t, Default().Width, p.Width)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: [not, a, number\n"), 0644))
	p, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), p)
}

func TestApplyEnv(t *testing.T) {
	p := Default()
	err := ApplyEnv(&p, map[string]string{
		"VIZ_CONCEPT":         "Sound Waves",
		"VIZ_FPS":             "24",
		"VIZ_CAMERA_DISTANCE": "9.5",
		"VIZ_SHOW_FPS":        "true",
		"VIZ_ACQUIRE_TIMEOUT": "1500ms",
		"CONCEPT":             "ignored without prefix",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sound Waves", p.Concept)
	assert.Equal(t, 24, p.FPS)
	assert.Equal(t, float32(9.5), p.Camera.Distance)
	assert.True(t, p.ShowFPS)
	assert.Equal(t, 1500*time.Millisecond, p.AcquireTimeout)
	assert.Equal(t, Default().Backend, p.Backend)

	err = ApplyEnv(&p, map[string]string{"VIZ_FPS": "fast"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	p := Default()
	assert.Empty(t, p.Validate())

	p.FPS = 1000
	p.Width = 3
	p.Backend = " Pipeline "
	p.FallbackBackend = "webgl"
	p.Projection = "fisheye"
	p.Camera.Distance = -4
	p.AcquireTimeout = 0
	fixes := p.Validate()
	assert.Len(t, fixes, 6)
	assert.Equal(t, 240, p.FPS)
	assert.Equal(t, Default().Width, p.Width)
	assert.Equal(t, "pipeline", p.Backend)
	assert.Equal(t, "canvas", p.FallbackBackend)
	assert.Equal(t, "perspective", p.Projection)
	assert.Zero(t, p.Camera.Distance)
	assert.Equal(t, Default().AcquireTimeout, p.AcquireTimeout)

	p.FPS = 0
	p.Validate()
	assert.Equal(t, 1, p.FPS)
}

func TestReadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	src := "# viewer\nVIZ_CONCEPT=\"DNA Helix\"\n\nexport VIZ_FPS=30\nbroken line\n=nokey\nVIZ_BACKGROUND='photo.jpg'\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	vars, err := ReadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"VIZ_CONCEPT":    "DNA Helix",
		"VIZ_FPS":        "30",
		"VIZ_BACKGROUND": "photo.jpg",
	}, vars)

	missing, err := ReadDotEnv(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEnvironProcessWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIZ_FPS=30\nVIZ_WIDTH=320\n"), 0644))
	t.Setenv("VIZ_FPS", "45")

	vars, err := Environ(path)
	require.NoError(t, err)
	p := Default()
	require.NoError(t, ApplyEnv(&p, vars))
	assert.Equal(t, 45, p.FPS)
	assert.Equal(t, 320, p.Width)
}
