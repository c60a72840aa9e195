package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/crolly/mug/internal/project"
)

// WriteProjectTree prints the resources and groups of m with their
// functions, routes and auth bindings.
func WriteProjectTree(w io.Writer, m *project.Model) error {
	root := gtree.NewRoot(m.Name)
	for _, o := range m.Owners() {
		label := fmt.Sprintf("%s (%s)", o.Name, o.Kind)
		if auth := *o.Auth; auth != nil {
			label += " [auth: " + auth.Type + "]"
		}
		node := root.Add(label)
		if o.Resource != nil && len(o.Resource.Attributes) > 0 {
			attrs := node.Add("attributes")
			for _, a := range o.Resource.Attributes {
				attrs.Add(a.Name + " " + a.GoType)
			}
		}
		for _, fn := range *o.Functions {
			line := fmt.Sprintf("%s  %s /%s", fn.Name, strings.ToUpper(fn.Event.Method), fn.Event.Path)
			if auth := *o.Auth; auth != nil && auth.Excludes(fn.Name) {
				line += " (public)"
			}
			node.Add(line)
		}
	}
	if err := gtree.OutputFromRoot(w, root); err != nil {
		return fmt.Errorf("render tree: %w", err)
	}
	return nil
}
