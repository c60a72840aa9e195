// Package config manages mug's own settings: default region, runtime and
// stage for new projects, the external tool commands and logging options.
// Settings live in a single YAML file below the user's home directory.
package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig  = errors.New("config: invalid configuration")
	ErrNotInitialized = errors.New("config: not loaded")
	ErrDynamicToken   = errors.New("config: unexpanded template token")
	ErrInvalidYAML    = errors.New("config: invalid YAML")
)

// FieldError reports one invalid field. Kind is the sentinel it matches.
type FieldError struct {
	Field   string
	Problem string
	Value   any
	Kind    error
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s %s", e.Field, e.Problem)
	}
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Problem, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// InvalidError lists every problem Validate found. It always matches
// ErrInvalidConfig, plus the kinds of its fields.
type InvalidError struct {
	Fields []FieldError
}

func (e *InvalidError) Error() string {
	parts := make([]string, len(e.Fields))
	for i := range e.Fields {
		parts[i] = e.Fields[i].Error()
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

func (e *InvalidError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	for i := range e.Fields {
		if e.Fields[i].Kind != nil && errors.Is(e.Fields[i].Kind, target) {
			return true
		}
	}
	return false
}
