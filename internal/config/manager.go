package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
)

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "MUG_CONFIG_DIR"

// Manager provides thread-safe configuration management.
// It must be initialized via Load() before use.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	dir    string
	loader *Loader
}

// NewManager creates a new Manager instance in uninitialized state.
func NewManager() *Manager {
	return &Manager{loader: NewLoader()}
}

// Dir resolves the configuration directory: $MUG_CONFIG_DIR, else ~/.mug.
func Dir() (string, error) {
	if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		return filepath.Clean(envDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, defs.ConfigDirName), nil
}

// Load reads the configuration from Dir(). File values are merged over
// compiled defaults, then environment variables are applied and the result
// is validated.
func (m *Manager) Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return m.LoadFrom(dir)
}

// LoadFrom is Load with an explicit directory.
func (m *Manager) LoadFrom(dir string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.loader.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	m.config = cfg
	m.dir = filepath.Clean(dir)
	return cfg, nil
}

// Get returns the current in-memory configuration, nil before Load.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Set replaces the in-memory configuration after validating it.
func (m *Manager) Set(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config == nil {
		return ErrNotInitialized
	}
	m.config = cfg
	return nil
}

// Save persists the current configuration atomically.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return ErrNotInitialized
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", defs.ConfigFile, err)
	}
	return project.AtomicWrite(filepath.Join(m.dir, defs.ConfigFile), data, 0o644)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("MUG_LOG_LEVEL"); level != "" {
		cfg.System.LogLevel = level
	}
	if format := os.Getenv("MUG_LOG_FORMAT"); format != "" {
		cfg.System.LogFormat = format
	}
	if noColor := os.Getenv("MUG_NO_COLOR"); noColor == "true" || noColor == "1" {
		cfg.System.NoColor = true
	}
	if region := os.Getenv("MUG_REGION"); region != "" {
		cfg.Project.Region = region
	}
	if stage := os.Getenv("MUG_STAGE"); stage != "" {
		cfg.Project.Stage = stage
	}
}
