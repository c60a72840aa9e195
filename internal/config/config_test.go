package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/crolly/mug/internal/defs"
)

// clearEnv unsets every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MUG_LOG_LEVEL", "MUG_LOG_FORMAT", "MUG_NO_COLOR", "MUG_REGION", "MUG_STAGE"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, defs.ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.System.LogLevel != DefaultLogLevel || cfg.Project.Stage != DefaultStage {
		t.Errorf("defaults = %+v", cfg)
	}

	tools := cfg.ExternalTools()
	tools.Debug[0] = "changed"
	if cfg.Tools.Debug[0] == "changed" {
		t.Error("ExternalTools shares the debug slice")
	}
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		check   func(t *testing.T, cfg *Config)
		wantErr error
	}{
		{
			name: "missing_file_uses_defaults",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Project.Region != NewDefaultConfig().Project.Region {
					t.Errorf("region = %q", cfg.Project.Region)
				}
			},
		},
		{
			name:    "file_overrides_defaults",
			content: "project:\n  region: us-east-1\n  runtime: provided.al2\n  stage: prod\ntools:\n  debug: [sls, offline]\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Project.Region != "us-east-1" || cfg.Project.Stage != "prod" {
					t.Errorf("project = %+v", cfg.Project)
				}
				if cfg.Tools.Make != "make" {
					t.Errorf("unset tool lost its default: %q", cfg.Tools.Make)
				}
				if !slices.Equal(cfg.Tools.Debug, []string{"sls", "offline"}) {
					t.Errorf("debug = %v", cfg.Tools.Debug)
				}
			},
		},
		{
			name:    "invalid_yaml",
			content: "project: [unclosed\n",
			wantErr: ErrInvalidYAML,
		},
		{
			name:    "invalid_log_level",
			content: "system:\n  log_level: loud\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty_required_field",
			content: "tools:\n  serverless: \"\"\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unexpanded_token",
			content: "project:\n  region: \"{{REGION}}\"\n",
			wantErr: ErrDynamicToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.content != "" {
				writeConfig(t, dir, tt.content)
			}

			cfg, err := NewManager().LoadFrom(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MUG_LOG_LEVEL", "debug")
	t.Setenv("MUG_LOG_FORMAT", "json")
	t.Setenv("MUG_NO_COLOR", "1")
	t.Setenv("MUG_REGION", "ap-south-1")
	t.Setenv("MUG_STAGE", "qa")

	dir := t.TempDir()
	writeConfig(t, dir, "project:\n  region: us-east-1\n")

	cfg, err := NewManager().LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.Region != "ap-south-1" || cfg.Project.Stage != "qa" {
		t.Errorf("project = %+v", cfg.Project)
	}
	if cfg.System.LogLevel != "debug" || cfg.System.LogFormat != "json" || !cfg.System.NoColor {
		t.Errorf("system = %+v", cfg.System)
	}
}

func TestManagerSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")

	m := NewManager()
	if err := m.Save(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Save before Load = %v", err)
	}
	if _, err := m.LoadFrom(dir); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.Project.Stage = "staging"
	if err := m.Set(cfg); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := NewManager().LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Project.Stage != "staging" {
		t.Errorf("stage = %q", reloaded.Project.Stage)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	m := NewManager()
	cfg := NewDefaultConfig()
	cfg.System.LogFormat = "xml"

	err := m.Set(cfg)
	var verrs *InvalidError
	if !errors.As(err, &verrs) || len(verrs.Fields) != 1 || verrs.Fields[0].Field != "system.log_format" {
		t.Errorf("error = %v", err)
	}
}

func TestDirFromEnv(t *testing.T) {
	want := t.TempDir()
	t.Setenv(EnvConfigDir, want)
	got, err := Dir()
	if err != nil || got != want {
		t.Errorf("Dir() = %q, %v", got, err)
	}
}
