package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/engine"
	"github.com/crolly/mug/internal/project"
)

// getStringFlag retrieves a string flag value from the command.
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// getBoolFlag retrieves a bool flag value from the command.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}

// getStringSliceFlag retrieves a comma separated flag value from the command.
func getStringSliceFlag(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil
	}
	return val
}

// projectRoot resolves the --project flag, falling back to the working
// directory.
func projectRoot(cmd *cobra.Command) (string, error) {
	if root := getStringFlag(cmd, "project"); root != "" {
		return root, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseAttributes parses "name:type" pairs, e.g. "title:string,price:float64".
func parseAttributes(specs []string) ([]project.Attribute, error) {
	attrs := make([]project.Attribute, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		name, goType, ok := strings.Cut(s, ":")
		name, goType = strings.TrimSpace(name), strings.TrimSpace(goType)
		if !ok || name == "" || goType == "" {
			return nil, project.Errorf(project.ErrValidation, "add resource", s, "attribute must look like name:type")
		}
		attrs = append(attrs, project.Attribute{Name: name, GoType: goType})
	}
	return attrs, nil
}

// parseKey parses "name:hash[,name:range]". A bare name is the hash key.
func parseKey(specs []string) (hash, rng string, err error) {
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		name, role, ok := strings.Cut(s, ":")
		name = strings.TrimSpace(name)
		if !ok {
			role = "hash"
		}
		switch strings.ToLower(strings.TrimSpace(role)) {
		case "hash":
			if hash != "" {
				return "", "", project.Errorf(project.ErrValidation, "add resource", s, "hash key given twice")
			}
			hash = name
		case "range":
			if rng != "" {
				return "", "", project.Errorf(project.ErrValidation, "add resource", s, "range key given twice")
			}
			rng = name
		default:
			return "", "", project.Errorf(project.ErrValidation, "add resource", s, "key role must be hash or range")
		}
	}
	return hash, rng, nil
}

// engineFor returns a previewing engine when --dry-run is set.
func engineFor(cmd *cobra.Command) *engine.Engine {
	if getBoolFlag(cmd, "dry-run") {
		return deps.Engine.Preview()
	}
	return deps.Engine
}
