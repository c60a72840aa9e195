package template

import "github.com/crolly/mug/pkg/version"

// Template names inside the embedded filesystem.
const (
	ProjectMakefile  = "project/Makefile.tmpl"
	ProjectGoMod     = "project/go.mod.tmpl"
	ProjectGitIgnore = "project/gitignore.tmpl"
	GroupHandler     = "function/main.go.tmpl"
	ResourceHandler  = "resource/main.go.tmpl"
	ResourceModel    = "resource/model.go.tmpl"
)

// ProjectContext is the data for project level templates.
type ProjectContext struct {
	Name       string
	ImportPath string
	Region     string
	Runtime    string
	Version    string
	Functions  []FunctionContext
}

// FunctionContext is the data for a handler stub.
type FunctionContext struct {
	Name          string
	Owner         string
	QualifiedName string
	Handler       string
	Path          string
	Method        string
	ImportPath    string
	Authorized    bool
	Operation     string           // CRUD verb of a resource function, empty otherwise
	Resource      *ResourceContext // nil for group functions
}

// ResourceContext is the data for resource level templates.
type ResourceContext struct {
	Name        string
	Package     string
	HashKey     string
	RangeKey    string
	GeneratedID bool
	Attributes  []AttributeContext
	Imports     []string
}

// AttributeContext is one attribute of a resource item.
type AttributeContext struct {
	Name   string
	GoType string
}

// ContextOption configures a ProjectContext.
type ContextOption func(*ProjectContext)

// NewProjectContext creates a ProjectContext for the named project, then
// applies any provided options.
func NewProjectContext(name string, opts ...ContextOption) *ProjectContext {
	ctx := &ProjectContext{
		Name:       name,
		ImportPath: name,
		Version:    version.GetVersion(),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// WithImportPath sets the Go module path of the generated project.
func WithImportPath(path string) ContextOption {
	return func(c *ProjectContext) {
		if path != "" {
			c.ImportPath = path
		}
	}
}

// WithProvider sets the deployment region and runtime.
func WithProvider(region, runtime string) ContextOption {
	return func(c *ProjectContext) {
		c.Region = region
		c.Runtime = runtime
	}
}

// WithFunctions sets the functions built by the Makefile.
func WithFunctions(fns []FunctionContext) ContextOption {
	return func(c *ProjectContext) {
		c.Functions = fns
	}
}
