// Package project defines the persisted project model of a mug project and
// the store that loads and saves it. The model is the single source of truth:
// the deployment descriptor and the generated file tree are projections of it.
package project

import (
	"maps"
	"slices"

	"github.com/crolly/mug/internal/defs"
)

// Default values applied to new projects and resources.
const (
	DefaultRegion      = "eu-central-1"
	DefaultRuntime     = "go1.x"
	DefaultBilling     = BillingProvisioned
	DefaultHashKey     = "id"
	DefaultMethod      = "get"
	DefaultAuthType    = "cognito"
	defaultCapacityRCU = 1
	defaultCapacityWCU = 1
)

// Billing modes of a resource table.
const (
	BillingProvisioned = "provisioned"
	BillingOnDemand    = "ondemand"
)

// Model is the declarative description of a project.
type Model struct {
	Name           string          `yaml:"name" validate:"required,ident"`
	ImportPath     string          `yaml:"importPath,omitempty"`
	Region         string          `yaml:"region,omitempty"`
	Runtime        string          `yaml:"runtime,omitempty"`
	Resources      []Resource      `yaml:"resources,omitempty" validate:"dive"`
	FunctionGroups []FunctionGroup `yaml:"functionGroups,omitempty" validate:"dive"`
	Extra          map[string]any  `yaml:",inline"`

	// Root is the directory holding the model file. It is not persisted.
	Root string `yaml:"-"`
}

// Resource is a DynamoDB-backed entity with its functions.
type Resource struct {
	Name       string         `yaml:"name" validate:"required,ident"`
	Attributes []Attribute    `yaml:"attributes,omitempty" validate:"dive"`
	Key        KeySchema      `yaml:"key"`
	Billing    Billing        `yaml:"billing"`
	Auth       *AuthBinding   `yaml:"auth,omitempty"`
	Functions  []Function     `yaml:"functions,omitempty" validate:"dive"`
	Extra      map[string]any `yaml:",inline"`
}

// Attribute is one field of a resource item.
type Attribute struct {
	Name   string         `yaml:"name" validate:"required,ident"`
	GoType string         `yaml:"type" validate:"required"`
	Extra  map[string]any `yaml:",inline"`
}

// KeySchema names the hash (and optional range) key attributes.
type KeySchema struct {
	Hash  string         `yaml:"hash" validate:"required"`
	Range string         `yaml:"range,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// Billing configures the table capacity mode.
type Billing struct {
	Mode  string         `yaml:"mode" validate:"required,oneof=provisioned ondemand"`
	Read  int64          `yaml:"read,omitempty"`
	Write int64          `yaml:"write,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// FunctionGroup is a named bag of functions not tied to a table.
type FunctionGroup struct {
	Name      string         `yaml:"name" validate:"required,ident"`
	Auth      *AuthBinding   `yaml:"auth,omitempty"`
	Functions []Function     `yaml:"functions,omitempty" validate:"dive"`
	Extra     map[string]any `yaml:",inline"`
}

// Function is one deployable handler.
type Function struct {
	Name       string         `yaml:"name" validate:"required,ident"`
	AssignedTo string         `yaml:"assignedTo" validate:"required"`
	Handler    string         `yaml:"handler" validate:"required"`
	Event      Event          `yaml:"event"`
	Extra      map[string]any `yaml:",inline"`
}

// Event is the HTTP trigger of a function.
type Event struct {
	Path   string         `yaml:"path"`
	Method string         `yaml:"method" validate:"required,oneof=get post put patch delete head options any"`
	CORS   *bool          `yaml:"cors,omitempty"`
	Extra  map[string]any `yaml:",inline"`
}

// AuthBinding attaches an authorizer to every function of its owner.
type AuthBinding struct {
	Type        string         `yaml:"type" validate:"required,oneof=cognito"`
	UserPoolARN string         `yaml:"userPoolArn,omitempty"`
	Exclude     []string       `yaml:"exclude,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

// OwnerKind tells a resource from a function group.
type OwnerKind string

const (
	KindResource OwnerKind = "resource"
	KindGroup    OwnerKind = "group"
)

// Owner is a view over a Resource or FunctionGroup. Mutations through the
// pointers affect the model it was obtained from.
type Owner struct {
	Kind      OwnerKind
	Name      string
	Auth      **AuthBinding
	Functions *[]Function
	Resource  *Resource // nil for groups
}

// New returns an empty model with defaults applied.
func New(name, root string) *Model {
	return &Model{
		Name:       name,
		ImportPath: name,
		Region:     DefaultRegion,
		Runtime:    DefaultRuntime,
		Root:       root,
	}
}

// NewResource returns a resource with the default key schema and billing.
func NewResource(name string) Resource {
	return Resource{
		Name:    name,
		Key:     KeySchema{Hash: DefaultHashKey},
		Billing: Billing{Mode: DefaultBilling, Read: defaultCapacityRCU, Write: defaultCapacityWCU},
	}
}

// NewFunction returns a function assigned to owner with its handler reference set.
func NewFunction(name, owner, path, method string) Function {
	if method == "" {
		method = DefaultMethod
	}
	return Function{
		Name:       name,
		AssignedTo: owner,
		Handler:    HandlerRef(owner, name),
		Event:      Event{Path: path, Method: method},
	}
}

// HandlerRef is the binary a function's handler compiles to.
func HandlerRef(owner, function string) string {
	return defs.BinDir + "/" + owner + "/" + function
}

// QualifiedName is the descriptor key of a function. Names cannot contain
// '-', so the key is unambiguous.
func QualifiedName(owner, function string) string {
	return owner + "-" + function
}

// CORSEnabled reports the effective CORS flag; unset means enabled.
func (e Event) CORSEnabled() bool {
	return e.CORS == nil || *e.CORS
}

// Excludes reports whether the binding leaves function unauthenticated.
func (a *AuthBinding) Excludes(function string) bool {
	return a != nil && slices.Contains(a.Exclude, function)
}

// Owner returns the resource or group called name.
func (m *Model) Owner(name string) (Owner, bool) {
	name = Normalize(name)
	for i := range m.Resources {
		r := &m.Resources[i]
		if r.Name == name {
			return Owner{Kind: KindResource, Name: r.Name, Auth: &r.Auth, Functions: &r.Functions, Resource: r}, true
		}
	}
	for i := range m.FunctionGroups {
		g := &m.FunctionGroups[i]
		if g.Name == name {
			return Owner{Kind: KindGroup, Name: g.Name, Auth: &g.Auth, Functions: &g.Functions}, true
		}
	}
	return Owner{}, false
}

// Owners returns resources first, then groups, each in model order.
func (m *Model) Owners() []Owner {
	owners := make([]Owner, 0, len(m.Resources)+len(m.FunctionGroups))
	for i := range m.Resources {
		r := &m.Resources[i]
		owners = append(owners, Owner{Kind: KindResource, Name: r.Name, Auth: &r.Auth, Functions: &r.Functions, Resource: r})
	}
	for i := range m.FunctionGroups {
		g := &m.FunctionGroups[i]
		owners = append(owners, Owner{Kind: KindGroup, Name: g.Name, Auth: &g.Auth, Functions: &g.Functions})
	}
	return owners
}

// FindFunction returns the function called name and its owner.
func (m *Model) FindFunction(name string) (*Function, Owner, bool) {
	name = Normalize(name)
	for _, o := range m.Owners() {
		fns := *o.Functions
		for i := range fns {
			if fns[i].Name == name {
				return &fns[i], o, true
			}
		}
	}
	return nil, Owner{}, false
}

// OwnerClash returns the owner whose name, or any identifier derived from
// it, collides with name.
func (m *Model) OwnerClash(name string) (string, bool) {
	var taken []string
	for _, o := range m.Owners() {
		taken = append(taken, o.Name)
	}
	return clash(OwnerKeys, Normalize(name), taken)
}

// FunctionClash is OwnerClash for function names.
func (m *Model) FunctionClash(name string) (string, bool) {
	var taken []string
	for _, fn := range m.Functions() {
		taken = append(taken, fn.Name)
	}
	return clash(FunctionKeys, Normalize(name), taken)
}

// Functions returns every function of the project, resources first.
func (m *Model) Functions() []Function {
	var all []Function
	for _, o := range m.Owners() {
		all = append(all, *o.Functions...)
	}
	return all
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	c := *m
	c.Extra = cloneExtra(m.Extra)
	if m.Resources != nil {
		c.Resources = make([]Resource, len(m.Resources))
		for i, r := range m.Resources {
			c.Resources[i] = r.clone()
		}
	}
	if m.FunctionGroups != nil {
		c.FunctionGroups = make([]FunctionGroup, len(m.FunctionGroups))
		for i, g := range m.FunctionGroups {
			c.FunctionGroups[i] = g.clone()
		}
	}
	return &c
}

func (r Resource) clone() Resource {
	c := r
	c.Extra = cloneExtra(r.Extra)
	c.Key.Extra = cloneExtra(r.Key.Extra)
	c.Billing.Extra = cloneExtra(r.Billing.Extra)
	if r.Attributes != nil {
		c.Attributes = make([]Attribute, len(r.Attributes))
		for i, a := range r.Attributes {
			a.Extra = cloneExtra(a.Extra)
			c.Attributes[i] = a
		}
	}
	c.Auth = r.Auth.clone()
	c.Functions = cloneFunctions(r.Functions)
	return c
}

func (g FunctionGroup) clone() FunctionGroup {
	c := g
	c.Extra = cloneExtra(g.Extra)
	c.Auth = g.Auth.clone()
	c.Functions = cloneFunctions(g.Functions)
	return c
}

func (a *AuthBinding) clone() *AuthBinding {
	if a == nil {
		return nil
	}
	c := *a
	c.Exclude = slices.Clone(a.Exclude)
	c.Extra = cloneExtra(a.Extra)
	return &c
}

func cloneFunctions(fns []Function) []Function {
	if fns == nil {
		return nil
	}
	out := make([]Function, len(fns))
	for i, f := range fns {
		f.Extra = cloneExtra(f.Extra)
		f.Event.Extra = cloneExtra(f.Event.Extra)
		if f.Event.CORS != nil {
			v := *f.Event.CORS
			f.Event.CORS = &v
		}
		out[i] = f
	}
	return out
}

// cloneExtra copies the top level of an unknown-field map. Nested values are
// never mutated by mug, so sharing them is safe.
func cloneExtra(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
