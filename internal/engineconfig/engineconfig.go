package engineconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the path to the viewer config file, relative to the process working directory.
const ConfigPath = "config/viewer.yaml"

// EnvPrefix prefixes every environment override, e.g. VIZ_CONCEPT or VIZ_CAMERA_DISTANCE.
const EnvPrefix = "VIZ_"

// Back end names accepted in Prefs.Backend and Prefs.FallbackBackend.
var backends = []string{"canvas", "markup", "pipeline"}

// CameraPrefs is the starting camera. Zero Distance uses the concept's suggestion.
type CameraPrefs struct {
	Distance float32 `yaml:"distance" env:"DISTANCE"`
	YawDeg   float32 `yaml:"yaw_degrees" env:"YAW"`
	PitchDeg float32 `yaml:"pitch_degrees" env:"PITCH"`
}

// Prefs holds viewer preferences. Persisted across runs; every field can be overridden from
// the environment.
type Prefs struct {
	Concept         string        `yaml:"concept" env:"CONCEPT"`
	Subject         string        `yaml:"subject,omitempty" env:"SUBJECT"`
	Backend         string        `yaml:"backend" env:"BACKEND"`
	FallbackBackend string        `yaml:"fallback_backend" env:"FALLBACK_BACKEND"`
	FPS             int           `yaml:"fps" env:"FPS"`
	Width           int           `yaml:"width" env:"WIDTH"`
	Height          int           `yaml:"height" env:"HEIGHT"`
	FOVDegrees      float32       `yaml:"fov_degrees" env:"FOV"`
	Projection      string        `yaml:"projection" env:"PROJECTION"`
	Camera          CameraPrefs   `yaml:"camera" envPrefix:"CAMERA_"`
	SpinPeriodMs    float32       `yaml:"spin_period_ms,omitempty" env:"SPIN_PERIOD_MS"`
	AcquireTimeout  time.Duration `yaml:"acquire_timeout" env:"ACQUIRE_TIMEOUT"`
	// Background is "synthetic" or the path of a still image standing in for the camera feed.
	Background   string `yaml:"background" env:"BACKGROUND"`
	PanelCSS     string `yaml:"panel_css,omitempty" env:"PANEL_CSS"`
	PanelFont    string `yaml:"panel_font,omitempty" env:"PANEL_FONT"`
	LogFile      string `yaml:"log_file" env:"LOG_FILE"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
	ShowFPS      bool   `yaml:"show_fps" env:"SHOW_FPS"`
	ShowMemAlloc bool   `yaml:"show_memalloc" env:"SHOW_MEMALLOC"`
}

// Default returns the default preferences (canvas back end, 60 fps, overlays off).
func Default() Prefs {
	return Prefs{
		Concept:         "Atomic Structure",
		Backend:         "canvas",
		FallbackBackend: "canvas",
		FPS:             60,
		Width:           960,
		Height:          540,
		FOVDegrees:      50,
		Projection:      "perspective",
		AcquireTimeout:  10 * time.Second,
		Background:      "synthetic",
		LogFile:         "logs/viewer.txt",
		LogLevel:        "info",
	}
}

// Load reads preferences from path (ConfigPath when empty). A missing file yields Default()
// without error and does not create a file; an unreadable or invalid one yields Default()
// and the error.
func Load(path string) (Prefs, error) {
	if path == "" {
		path = ConfigPath
	}
	p := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return Default(), fmt.Errorf("engineconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("engineconfig: parse %s: %w", path, err)
	}
	return p, nil
}

// ApplyEnv overlays VIZ_* variables from environ (the process environment when nil).
func ApplyEnv(p *Prefs, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(p, opts); err != nil {
		return fmt.Errorf("engineconfig: environment: %w", err)
	}
	return nil
}

// Save writes preferences to path (ConfigPath when empty), creating the directory if needed.
func Save(path string, p Prefs) error {
	if path == "" {
		path = ConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate repairs out-of-range values in place and describes each repair.
func (p *Prefs) Validate() []string {
	var fixes []string
	fix := func(format string, args ...any) {
		fixes = append(fixes, fmt.Sprintf(format, args...))
	}
	d := Default()
	if p.FPS < 1 || p.FPS > 240 {
		fix("fps %d out of range 1-240, using %d", p.FPS, clampInt(p.FPS, 1, 240))
		p.FPS = clampInt(p.FPS, 1, 240)
	}
	if p.Width < 16 {
		fix("width %d below 16", p.Width)
		p.Width = d.Width
	}
	if p.Height < 16 {
		fix("height %d below 16", p.Height)
		p.Height = d.Height
	}
	if p.FOVDegrees <= 1 || p.FOVDegrees >= 179 {
		fix("fov_degrees %g out of range", p.FOVDegrees)
		p.FOVDegrees = d.FOVDegrees
	}
	p.Backend = strings.ToLower(strings.TrimSpace(p.Backend))
	if !known(p.Backend) {
		fix("unknown backend %q", p.Backend)
		p.Backend = d.Backend
	}
	p.FallbackBackend = strings.ToLower(strings.TrimSpace(p.FallbackBackend))
	if !known(p.FallbackBackend) {
		fix("unknown fallback_backend %q", p.FallbackBackend)
		p.FallbackBackend = d.FallbackBackend
	}
	if p.Projection != "perspective" && p.Projection != "weak" {
		fix("unknown projection %q", p.Projection)
		p.Projection = d.Projection
	}
	if p.Camera.Distance < 0 {
		fix("camera distance %g is negative", p.Camera.Distance)
		p.Camera.Distance = 0
	}
	if p.SpinPeriodMs < 0 {
		fix("spin_period_ms %g is negative", p.SpinPeriodMs)
		p.SpinPeriodMs = 0
	}
	if p.AcquireTimeout <= 0 {
		fix("acquire_timeout %s must be positive", p.AcquireTimeout)
		p.AcquireTimeout = d.AcquireTimeout
	}
	if p.Background == "" {
		p.Background = d.Background
	}
	return fixes
}

func known(name string) bool {
	for _, b := range backends {
		if b == name {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
