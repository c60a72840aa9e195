package config

import (
	"slices"

	"github.com/crolly/mug/internal/external"
	"github.com/crolly/mug/internal/project"
)

// Default value constants.
const (
	DefaultStage     = "dev"
	DefaultLogLevel  = "error"
	DefaultLogFormat = "text"
)

// NewDefaultConfig returns a Config with all fields set to compiled defaults.
func NewDefaultConfig() *Config {
	tools := external.DefaultTools()
	return &Config{
		Project: ProjectDefaults{
			Region:  project.DefaultRegion,
			Runtime: project.DefaultRuntime,
			Stage:   DefaultStage,
		},
		Tools: ToolsConfig{
			Make:       tools.Make,
			Serverless: tools.Serverless,
			Debug:      slices.Clone(tools.Debug),
		},
		System: SystemConfig{
			LogLevel:  DefaultLogLevel,
			LogFormat: DefaultLogFormat,
		},
	}
}

// ExternalTools converts the tools section for the external runner.
func (c *Config) ExternalTools() external.Tools {
	return external.Tools{
		Make:       c.Tools.Make,
		Serverless: c.Tools.Serverless,
		Debug:      slices.Clone(c.Tools.Debug),
	}
}
