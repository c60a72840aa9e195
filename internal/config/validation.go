package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Template tokens that must not appear in configuration values.
var dynamicTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\{\{[^}]+\}\}`),      // {{VAR}}
	regexp.MustCompile(`\$[A-Z_][A-Z0-9_]*`), // $VAR
}

// Validate checks the configuration for correctness.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRequired(cfg)...)
	errs = append(errs, validateSystem(&cfg.System)...)
	errs = append(errs, validateDynamicTokens(cfg)...)

	if len(errs) > 0 {
		return &InvalidError{Fields: errs}
	}
	return nil
}

func validateRequired(cfg *Config) []FieldError {
	var errs []FieldError
	for _, f := range []struct{ field, value string }{
		{"project.region", cfg.Project.Region},
		{"project.runtime", cfg.Project.Runtime},
		{"project.stage", cfg.Project.Stage},
		{"tools.make", cfg.Tools.Make},
		{"tools.serverless", cfg.Tools.Serverless},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldError{
				Field:   f.field,
				Problem: "is required",
				Kind:    ErrInvalidConfig,
			})
		}
	}
	return errs
}

func validateSystem(s *SystemConfig) []FieldError {
	var errs []FieldError
	if !IsValidLogLevel(s.LogLevel) {
		errs = append(errs, FieldError{
			Field:   "system.log_level",
			Problem: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
			Value:   s.LogLevel,
			Kind:    ErrInvalidConfig,
		})
	}
	if !slices.Contains(ValidLogFormats(), s.LogFormat) {
		errs = append(errs, FieldError{
			Field:   "system.log_format",
			Problem: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
			Value:   s.LogFormat,
			Kind:    ErrInvalidConfig,
		})
	}
	return errs
}

// validateDynamicTokens checks string fields for unexpanded tokens.
func validateDynamicTokens(cfg *Config) []FieldError {
	var errs []FieldError
	errs = append(errs, checkStringField("project.region", cfg.Project.Region)...)
	errs = append(errs, checkStringField("project.runtime", cfg.Project.Runtime)...)
	errs = append(errs, checkStringField("project.stage", cfg.Project.Stage)...)
	errs = append(errs, checkStringField("tools.make", cfg.Tools.Make)...)
	errs = append(errs, checkStringField("tools.serverless", cfg.Tools.Serverless)...)
	for i, arg := range cfg.Tools.Debug {
		errs = append(errs, checkStringField(fmt.Sprintf("tools.debug[%d]", i), arg)...)
	}
	return errs
}

// checkStringField checks a single string field for dynamic token patterns.
func checkStringField(field, value string) []FieldError {
	if value == "" {
		return nil
	}
	for _, pattern := range dynamicTokenPatterns {
		if match := pattern.FindString(value); match != "" {
			return []FieldError{
				{
					Field:   field,
					Problem: fmt.Sprintf("contains unexpanded dynamic token: %s", match),
					Value:   value,
					Kind:    ErrDynamicToken,
				},
			}
		}
	}
	return nil
}
