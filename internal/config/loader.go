package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/crolly/mug/internal/defs"
)

// Loader reads the configuration file.
type Loader struct {
	loaded bool
}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads config.yaml from configDir on top of the compiled defaults.
// A missing file yields the defaults; invalid YAML is an error.
func (l *Loader) Load(configDir string) (*Config, error) {
	l.loaded = false
	cfg := NewDefaultConfig()

	path := filepath.Join(filepath.Clean(configDir), defs.ConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, ErrInvalidYAML, err)
	}
	l.loaded = true
	return cfg, nil
}

// Loaded reports whether the last Load found a file.
func (l *Loader) Loaded() bool {
	return l.loaded
}
