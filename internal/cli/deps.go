// Package cli provides the cobra command tree of mug and the composition
// root that wires the engine, the external tool runner and the terminal UI.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/config"
	"github.com/crolly/mug/internal/engine"
	"github.com/crolly/mug/internal/external"
	"github.com/crolly/mug/internal/ui"
)

// Dependencies holds the services used by commands. It is the only place
// where concrete types are instantiated.
type Dependencies struct {
	Config    *config.Manager
	Engine    *engine.Engine
	Runner    external.Runner
	Theme     *ui.Theme
	Headless  *ui.HeadlessManager
	Progress  ui.Progress
	Confirmer ui.Confirmer
	Logger    *slog.Logger
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// InitDependencies creates the dependencies with a quiet logger and the
// built-in configuration. setupDependencies refines them once flags are
// parsed.
func InitDependencies() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	theme := ui.NewTheme(false)
	hm := ui.NewHeadlessManager()

	deps = &Dependencies{
		Config:    config.NewManager(),
		Engine:    engine.New(engine.WithLogger(logger)),
		Runner:    external.NewExecRunner(os.Stdout, os.Stderr, logger),
		Theme:     theme,
		Headless:  hm,
		Progress:  ui.NewProgress(theme, hm),
		Confirmer: ui.NewConfirmer(theme, hm),
		Logger:    logger,
	}
}

// GetDeps returns the current Dependencies instance.
// Returns nil if InitDependencies has not been called.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// setupDependencies loads the user configuration and applies the global
// flags on top of it. Dependencies injected through SetDeps with a nil
// Config are left untouched.
func setupDependencies(cmd *cobra.Command) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	if deps.Config == nil {
		return nil
	}

	cfg, err := deps.Config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl := getStringFlag(cmd, "log-level"); lvl != "" {
		cfg.System.LogLevel = lvl
	}
	if getBoolFlag(cmd, "no-color") {
		cfg.System.NoColor = true
	}
	if getBoolFlag(cmd, "non-interactive") {
		cfg.System.NonInteractive = true
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.System.LogLevel, cfg.System.LogFormat)
	if err != nil {
		return err
	}
	deps.Logger = logger
	deps.Engine = engine.New(engine.WithLogger(logger))
	deps.Runner = external.NewExecRunner(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)

	deps.Theme = ui.NewTheme(cfg.System.NoColor)
	if cfg.System.NonInteractive {
		deps.Headless.ForceHeadless(true)
	}
	deps.Progress = ui.NewProgress(deps.Theme, deps.Headless)
	deps.Confirmer = ui.NewConfirmer(deps.Theme, deps.Headless)
	return nil
}

// newLogger builds the stderr logger. Below warn level nothing is written
// unless a level was configured, which keeps command output quiet.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	if level == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: must be one of: %s", level, strings.Join(config.ValidLogLevels(), ", "))
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
