package config

import "slices"

// Config is the root configuration aggregate.
type Config struct {
	Project ProjectDefaults `yaml:"project"`
	Tools   ToolsConfig     `yaml:"tools"`
	System  SystemConfig    `yaml:"system"`
}

// ProjectDefaults seed new projects and deployments.
type ProjectDefaults struct {
	Region  string `yaml:"region"`
	Runtime string `yaml:"runtime"`
	Stage   string `yaml:"stage"`
}

// ToolsConfig names the external commands mug shells out to.
type ToolsConfig struct {
	Make       string   `yaml:"make"`
	Serverless string   `yaml:"serverless"`
	Debug      []string `yaml:"debug"`
}

// SystemConfig holds logging and terminal options.
type SystemConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	NoColor        bool   `yaml:"no_color"`
	NonInteractive bool   `yaml:"non_interactive"`
}

// ValidLogLevels lists the accepted values of system.log_level.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats lists the accepted values of system.log_format.
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// IsValidLogLevel reports whether level is accepted.
func IsValidLogLevel(level string) bool {
	return slices.Contains(ValidLogLevels(), level)
}
