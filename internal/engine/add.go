package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/materialize"
	"github.com/crolly/mug/internal/project"
)

// CreateOptions configures Create.
type CreateOptions struct {
	// Dir is the parent directory; the project is created in Dir/Name.
	Dir        string
	Name       string
	ImportPath string
	Region     string
	Runtime    string
	// Force allows creating into an existing directory. Files already there
	// are merged, not overwritten, and an existing model keeps its resources
	// and groups.
	Force bool
}

// ProjectRoot returns the directory Create writes to.
func (o CreateOptions) ProjectRoot() string {
	dir := o.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, project.Normalize(o.Name))
}

// Create initializes a new project with an empty model and the base tree.
// A forced create over an existing project starts from its model instead.
func (e *Engine) Create(ctx context.Context, opts CreateOptions) (*Result, error) {
	const op = "create"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := project.Normalize(opts.Name)
	if err := project.CheckName(op, name); err != nil {
		return nil, err
	}
	root := opts.ProjectRoot()

	_, err := os.Stat(root)
	switch {
	case err == nil && !opts.Force:
		return nil, project.NewError(project.ErrAlreadyExists, op, root)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, &project.Error{Op: op, Subject: root, Kind: project.ErrMaterialization, Err: err}
	}

	m := project.New(name, root)
	var previous *project.Model
	if opts.Force {
		existing, err := project.Load(root)
		switch {
		case err == nil:
			// Resources and groups survive so no handler loses its owner.
			previous = existing
			m = existing.Clone()
			m.Name = name
		case !errors.Is(err, project.ErrNotFound):
			// Without a usable model nothing is removed; leftover handlers
			// are reported as orphans.
			e.logger.Warn("ignoring unreadable model", "root", root, "error", err)
		}
	}
	if opts.ImportPath != "" {
		m.ImportPath = opts.ImportPath
	}
	if opts.Region != "" {
		m.Region = opts.Region
	}
	if opts.Runtime != "" {
		m.Runtime = opts.Runtime
	}

	e.logger.Info("creating project", "name", name, "root", root, "force", opts.Force)
	return e.commit(ctx, mutation{op: op, root: root, previous: previous, next: m})
}

// AddResourceOptions configures AddResource.
type AddResourceOptions struct {
	Name       string
	Attributes []project.Attribute
	HashKey    string
	RangeKey   string
	Billing    string
	Read       int64
	Write      int64
	// CRUD seeds the create, read, update, delete and list functions.
	CRUD bool
}

// AddResource adds a DynamoDB backed resource.
func (e *Engine) AddResource(ctx context.Context, root string, opts AddResourceOptions) (*Result, error) {
	const op = "add resource"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	name := project.Normalize(opts.Name)
	if err := project.CheckName(op, name); err != nil {
		return nil, err
	}
	if existing, taken := current.OwnerClash(name); taken {
		return nil, duplicate(op, name, existing)
	}

	r := project.NewResource(name)
	seen := map[string]bool{}
	for _, a := range opts.Attributes {
		a.Name = project.Normalize(a.Name)
		if err := project.CheckName(op, a.Name); err != nil {
			return nil, err
		}
		if a.GoType == "" {
			return nil, project.Errorf(project.ErrValidation, op, a.Name, "attribute type is required")
		}
		if seen[a.Name] {
			return nil, project.Errorf(project.ErrValidation, op, a.Name, "attribute declared twice")
		}
		seen[a.Name] = true
		r.Attributes = append(r.Attributes, a)
	}
	if opts.HashKey != "" {
		r.Key.Hash = project.Normalize(opts.HashKey)
	}
	r.Key.Range = project.Normalize(opts.RangeKey)
	for _, k := range []string{r.Key.Hash, r.Key.Range} {
		if k != "" && k != project.DefaultHashKey && !r.HasAttribute(k) {
			return nil, project.Errorf(project.ErrValidation, op, k, "key attribute is not declared on %q", name)
		}
	}

	switch opts.Billing {
	case "":
	case project.BillingOnDemand:
		r.Billing = project.Billing{Mode: project.BillingOnDemand}
	case project.BillingProvisioned:
		if opts.Read > 0 {
			r.Billing.Read = opts.Read
		}
		if opts.Write > 0 {
			r.Billing.Write = opts.Write
		}
	default:
		return nil, project.Errorf(project.ErrValidation, op, opts.Billing, "billing must be %q or %q", project.BillingProvisioned, project.BillingOnDemand)
	}

	if opts.CRUD {
		for _, fn := range project.CRUDFunctions(r) {
			if existing, taken := current.FunctionClash(fn.Name); taken {
				return nil, duplicate(op, fn.Name, existing)
			}
			r.Functions = append(r.Functions, fn)
		}
	}

	next := current.Clone()
	next.Resources = append(next.Resources, r)
	return e.commit(ctx, mutation{op: op, root: root, previous: current, next: next})
}

// AddFunctionGroup adds an empty function group.
func (e *Engine) AddFunctionGroup(ctx context.Context, root, name string) (*Result, error) {
	const op = "add group"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	name = project.Normalize(name)
	if err := project.CheckName(op, name); err != nil {
		return nil, err
	}
	if existing, taken := current.OwnerClash(name); taken {
		return nil, duplicate(op, name, existing)
	}

	next := current.Clone()
	next.FunctionGroups = append(next.FunctionGroups, project.FunctionGroup{Name: name})
	return e.commit(ctx, mutation{op: op, root: root, previous: current, next: next})
}

// AddFunctionOptions configures AddFunction.
type AddFunctionOptions struct {
	Name string
	// AssignedTo names the owning resource or group; empty means the
	// default group, which is created when missing.
	AssignedTo string
	Path       string
	Method     string
	CORS       *bool
}

// AddFunction adds a function to a resource or group.
func (e *Engine) AddFunction(ctx context.Context, root string, opts AddFunctionOptions) (*Result, error) {
	const op = "add function"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	name := project.Normalize(opts.Name)
	if err := project.CheckName(op, name); err != nil {
		return nil, err
	}
	if existing, taken := current.FunctionClash(name); taken {
		return nil, duplicate(op, name, existing)
	}

	next := current.Clone()
	target := project.Normalize(opts.AssignedTo)
	if target == "" {
		target = defs.DefaultGroup
		if _, ok := next.Owner(target); !ok {
			if existing, taken := next.OwnerClash(target); taken {
				return nil, duplicate(op, target, existing)
			}
			next.FunctionGroups = append(next.FunctionGroups, project.FunctionGroup{Name: target})
		}
	}
	owner, ok := next.Owner(target)
	if !ok {
		return nil, project.NewError(project.ErrUnknownGroup, op, target)
	}

	if opts.Method != "" && !validMethod(opts.Method) {
		return nil, project.Errorf(project.ErrValidation, op, opts.Method, "unsupported HTTP method")
	}
	path := opts.Path
	if path == "" {
		path = project.DefaultPath(owner, name)
	}
	fn := project.NewFunction(name, owner.Name, trimSlash(path), lower(opts.Method))
	fn.Event.CORS = opts.CORS
	*owner.Functions = append(*owner.Functions, fn)

	return e.commit(ctx, mutation{op: op, root: root, previous: current, next: next})
}

// MoveFunction re-parents a function, keeping its handler source.
func (e *Engine) MoveFunction(ctx context.Context, root, name, from, to string) (*Result, error) {
	const op = "move function"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	name = project.Normalize(name)
	from = project.Normalize(from)
	if from == "" {
		from = defs.DefaultGroup
	}
	to = project.Normalize(to)

	fn, owner, ok := current.FindFunction(name)
	if !ok || owner.Name != from {
		return nil, project.Errorf(project.ErrNotFound, op, name, "no function %q in %q", name, from)
	}
	if to == from {
		return nil, project.Errorf(project.ErrValidation, op, name, "function already belongs to %q", to)
	}
	if _, ok := current.Owner(to); !ok {
		return nil, project.NewError(project.ErrUnknownGroup, op, to)
	}

	next := current.Clone()
	src, _ := next.Owner(from)
	dst, _ := next.Owner(to)

	moved := *fn
	*src.Functions = slices.DeleteFunc(*src.Functions, func(f project.Function) bool { return f.Name == name })
	if len(*src.Functions) == 0 {
		*src.Functions = nil
	}
	if auth := *src.Auth; auth != nil {
		auth.Exclude = slices.DeleteFunc(auth.Exclude, func(n string) bool { return n == name })
		if len(auth.Exclude) == 0 {
			auth.Exclude = nil
		}
	}
	moved.AssignedTo = dst.Name
	moved.Handler = project.HandlerRef(dst.Name, name)
	*dst.Functions = append(*dst.Functions, moved)

	return e.commit(ctx, mutation{
		op:       op,
		root:     root,
		previous: current,
		next:     next,
		moves:    []materialize.Move{{Function: name, From: from, To: dst.Name}},
	})
}

// AddAuthOptions configures AddAuth.
type AddAuthOptions struct {
	Target      string
	UserPoolARN string
	// Exclude lists functions of the target served without authorization.
	Exclude []string
}

// AddAuth binds a Cognito authorizer to a resource or group.
func (e *Engine) AddAuth(ctx context.Context, root string, opts AddAuthOptions) (*Result, error) {
	const op = "add auth"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	target := project.Normalize(opts.Target)
	owner, ok := current.Owner(target)
	if !ok {
		return nil, project.NewError(project.ErrUnknownTarget, op, target)
	}
	if *owner.Auth != nil {
		return nil, project.NewError(project.ErrAlreadyBound, op, target)
	}

	binding := &project.AuthBinding{Type: project.DefaultAuthType, UserPoolARN: opts.UserPoolARN}
	for _, ex := range opts.Exclude {
		ex = project.Normalize(ex)
		if !slices.ContainsFunc(*owner.Functions, func(f project.Function) bool { return f.Name == ex }) {
			return nil, project.Errorf(project.ErrValidation, op, ex, "excluded function is not part of %q", target)
		}
		if !slices.Contains(binding.Exclude, ex) {
			binding.Exclude = append(binding.Exclude, ex)
		}
	}

	next := current.Clone()
	nextOwner, _ := next.Owner(target)
	*nextOwner.Auth = binding
	return e.commit(ctx, mutation{op: op, root: root, previous: current, next: next})
}
