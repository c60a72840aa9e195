package materialize

import (
	"path"
	"strings"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/template"
)

// ProjectContext builds the data for project level templates.
func ProjectContext(m *project.Model) *template.ProjectContext {
	return template.NewProjectContext(m.Name,
		template.WithImportPath(m.ImportPath),
		template.WithProvider(m.Region, m.Runtime),
		template.WithFunctions(FunctionContexts(m)),
	)
}

// FunctionContexts returns the contexts of every function, resources first.
func FunctionContexts(m *project.Model) []template.FunctionContext {
	var out []template.FunctionContext
	for _, o := range m.Owners() {
		for _, fn := range *o.Functions {
			out = append(out, FunctionContext(m, o, fn))
		}
	}
	return out
}

// FunctionContext builds the data for the handler stub of fn.
func FunctionContext(m *project.Model, o project.Owner, fn project.Function) template.FunctionContext {
	auth := *o.Auth
	ctx := template.FunctionContext{
		Name:          fn.Name,
		Owner:         o.Name,
		QualifiedName: project.QualifiedName(o.Name, fn.Name),
		Handler:       fn.Handler,
		Path:          fn.Event.Path,
		Method:        fn.Event.Method,
		ImportPath:    importPath(m),
		Authorized:    auth != nil && !auth.Excludes(fn.Name),
	}
	if o.Resource != nil {
		rc := ResourceContext(*o.Resource)
		ctx.Resource = &rc
		ctx.Operation = project.CRUDVerb(fn.Name, o.Name)
	}
	return ctx
}

// ResourceContext builds the data for the item model of r.
func ResourceContext(r project.Resource) template.ResourceContext {
	hash := r.Key.Hash
	if hash == "" {
		hash = project.DefaultHashKey
	}
	ctx := template.ResourceContext{
		Name:        r.Name,
		Package:     strings.ToLower(r.Name),
		HashKey:     hash,
		RangeKey:    r.Key.Range,
		GeneratedID: hash == project.DefaultHashKey && !r.HasAttribute(project.DefaultHashKey),
	}
	needsTime := false
	for _, a := range r.Attributes {
		ctx.Attributes = append(ctx.Attributes, template.AttributeContext{Name: a.Name, GoType: a.GoType})
		if strings.Contains(a.GoType, "time.") {
			needsTime = true
		}
	}
	if needsTime {
		ctx.Imports = append(ctx.Imports, "time")
	}
	return ctx
}

func importPath(m *project.Model) string {
	if m.ImportPath != "" {
		return m.ImportPath
	}
	return m.Name
}

// HandlerPath is the slash separated stub path of a function, relative to
// the project root.
func HandlerPath(owner, function string) string {
	return path.Join(defs.FunctionsDir, owner, function, defs.HandlerFile)
}

// HandlerDir is the directory of a function's stub.
func HandlerDir(owner, function string) string {
	return path.Join(defs.FunctionsDir, owner, function)
}

// OwnerDir is the directory of a resource or group.
func OwnerDir(owner string) string {
	return path.Join(defs.FunctionsDir, owner)
}

// ResourceModelPath is the item model file of a resource.
func ResourceModelPath(resource string) string {
	return path.Join(defs.FunctionsDir, resource, defs.ResourceModelFile)
}

// handlerTemplate picks the stub template for an owner kind.
func handlerTemplate(o project.Owner) string {
	if o.Kind == project.KindResource {
		return template.ResourceHandler
	}
	return template.GroupHandler
}
