// viewer - procedural concept visualizer
// Shows animated 3D models of educational concepts in a terminal or a raylib window, and
// exports them as YAML, PNG frames or declarative scene markup.
//
// Controls (run):
//
//	Arrows/WASD - Orbit
//	Mouse drag  - Orbit (window); right drag pans
//	Scroll, +/- - Zoom
//	R           - Reset view
//	:           - Console (terminal; try :help)
//	Q/Esc       - Quit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"viz-engine/internal/engineconfig"
	"viz-engine/internal/logger"
)

var (
	configPath string
	dotenvPath string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "viewer",
		Short: "Procedural concept visualizer",
		Long: `viewer - procedural concept visualizer

Builds a deterministic 3D model for an educational concept (an atom, the solar system,
a DNA helix ...) and animates it over a synthetic or photo background.

Configuration is read from config/viewer.yaml, then VIZ_* variables (also from .env),
then command-line flags.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", engineconfig.ConfigPath, "Path to the YAML config file")
	root.PersistentFlags().StringVar(&dotenvPath, "env-file", ".env", "Path to a dotenv file with VIZ_* variables")

	root.AddCommand(newRunCmd(), newDescribeCmd(), newConceptsCmd(), newSnapshotCmd(), newSceneCmd(), newFontCmd())
	return root
}

// loadPrefs layers the config file, the environment and changed flags, then validates.
func loadPrefs(cmd *cobra.Command, flags func(*engineconfig.Prefs)) (engineconfig.Prefs, []string, error) {
	p, err := engineconfig.Load(configPath)
	if err != nil {
		return p, nil, err
	}
	vars, err := engineconfig.Environ(dotenvPath)
	if err != nil {
		return p, nil, fmt.Errorf("read %s: %w", dotenvPath, err)
	}
	if err := engineconfig.ApplyEnv(&p, vars); err != nil {
		return p, nil, err
	}
	if flags != nil {
		flags(&p)
	}
	return p, p.Validate(), nil
}

// openLog opens the log file named by p and records the config repairs.
func openLog(p engineconfig.Prefs, fixes []string) *logger.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log, err := logger.New(p.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: log file %s: %v\n", p.LogFile, err)
	}
	for _, fix := range fixes {
		log.Warn("config repaired", "fix", fix)
	}
	return log
}
