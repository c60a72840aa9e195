package engine

import (
	"slices"
	"strings"

	"github.com/crolly/mug/internal/project"
)

var httpMethods = []string{"get", "post", "put", "patch", "delete", "head", "options", "any"}

func validMethod(m string) bool {
	return slices.Contains(httpMethods, lower(m))
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// trimSlash keeps paths relative, as the descriptor expects.
func trimSlash(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

// duplicate reports name as taken. When only a derived identifier matches,
// the message names the entry it collides with.
func duplicate(op, name, existing string) error {
	if existing == name {
		return project.NewError(project.ErrDuplicateName, op, name)
	}
	return project.Errorf(project.ErrDuplicateName, op, name, "collides with %q", existing)
}
