// Package planner turns destructive requests into an ordered list of removal
// steps. Entities and their dependencies form a graph; the plan is a stable
// topological order of that graph, so dependents always go before the
// entity they depend on and a plan can be previewed before it is applied.
package planner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/crolly/mug/internal/project"
)

// StepKind is the kind of a removal step.
type StepKind string

const (
	StepUnbindAuth     StepKind = "unbind-auth"
	StepRemoveFunction StepKind = "remove-function"
	StepRemoveResource StepKind = "remove-resource"
	StepRemoveGroup    StepKind = "remove-group"
)

// rank orders independent steps of the same plan.
var rank = map[StepKind]int{
	StepUnbindAuth:     0,
	StepRemoveFunction: 1,
	StepRemoveResource: 2,
	StepRemoveGroup:    2,
}

// Step is one removal.
type Step struct {
	Kind  StepKind
	Owner string // owning resource or group; for owner removals the owner itself
	Name  string // function name for StepRemoveFunction, otherwise the owner
}

// ID identifies the step within a plan.
func (s Step) ID() string {
	return string(s.Kind) + ":" + s.Owner + "/" + s.Name
}

// String describes the step for previews.
func (s Step) String() string {
	switch s.Kind {
	case StepUnbindAuth:
		return fmt.Sprintf("remove auth binding of %s", s.Owner)
	case StepRemoveFunction:
		return fmt.Sprintf("remove function %s from %s", s.Name, s.Owner)
	case StepRemoveResource:
		return fmt.Sprintf("remove resource %s", s.Name)
	default:
		return fmt.Sprintf("remove function group %s", s.Name)
	}
}

// Plan is an ordered list of removal steps.
type Plan struct {
	Target string
	Steps  []Step
}

// PlanRemoval plans the removal of the resource or group called name,
// cascading to its functions and auth binding.
func PlanRemoval(m *project.Model, name string) (*Plan, error) {
	owner, ok := m.Owner(name)
	if !ok {
		return nil, project.NewError(project.ErrNotFound, "remove", name)
	}

	g := graph.New(Step.ID, graph.Directed(), graph.PreventCycles())

	ownerKind := StepRemoveGroup
	if owner.Kind == project.KindResource {
		ownerKind = StepRemoveResource
	}
	root := Step{Kind: ownerKind, Owner: owner.Name, Name: owner.Name}
	if err := g.AddVertex(root); err != nil {
		return nil, fmt.Errorf("plan removal of %q: %w", name, err)
	}

	// An edge a -> b means a has to be removed before b.
	addDependent := func(s Step) error {
		if err := g.AddVertex(s); err != nil {
			return err
		}
		return g.AddEdge(s.ID(), root.ID())
	}

	if *owner.Auth != nil {
		if err := addDependent(Step{Kind: StepUnbindAuth, Owner: owner.Name, Name: owner.Name}); err != nil {
			return nil, fmt.Errorf("plan removal of %q: %w", name, err)
		}
	}
	for _, fn := range *owner.Functions {
		if err := addDependent(Step{Kind: StepRemoveFunction, Owner: owner.Name, Name: fn.Name}); err != nil {
			return nil, fmt.Errorf("plan removal of %q: %w", name, err)
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return lessID(g, a, b)
	})
	if err != nil {
		return nil, fmt.Errorf("plan removal of %q: %w", name, err)
	}

	plan := &Plan{Target: owner.Name}
	for _, id := range order {
		s, err := g.Vertex(id)
		if err != nil {
			return nil, fmt.Errorf("plan removal of %q: %w", name, err)
		}
		plan.Steps = append(plan.Steps, s)
	}
	return plan, nil
}

// PlanFunctionRemoval plans the removal of function name from owner.
func PlanFunctionRemoval(m *project.Model, name, owner string) (*Plan, error) {
	fn, o, ok := m.FindFunction(name)
	if !ok || o.Name != project.Normalize(owner) {
		return nil, project.Errorf(project.ErrNotFound, "remove function", name, "no function %q in %q", name, owner)
	}
	return &Plan{
		Target: fn.Name,
		Steps:  []Step{{Kind: StepRemoveFunction, Owner: o.Name, Name: fn.Name}},
	}, nil
}

// PlanAuthRemoval plans the removal of the auth binding of owner.
func PlanAuthRemoval(m *project.Model, owner string) (*Plan, error) {
	o, ok := m.Owner(owner)
	if !ok || *o.Auth == nil {
		return nil, project.Errorf(project.ErrNotFound, "remove auth", owner, "no auth binding on %q", owner)
	}
	return &Plan{
		Target: o.Name,
		Steps:  []Step{{Kind: StepUnbindAuth, Owner: o.Name, Name: o.Name}},
	}, nil
}

// Apply executes the plan against m in order.
func (p *Plan) Apply(m *project.Model) error {
	for _, s := range p.Steps {
		if err := applyStep(m, s); err != nil {
			return err
		}
	}
	return nil
}

// RemovedFunctions returns the function steps of the plan.
func (p *Plan) RemovedFunctions() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Kind == StepRemoveFunction {
			out = append(out, s)
		}
	}
	return out
}

// RemovedOwner returns the owner removed by the plan, if any.
func (p *Plan) RemovedOwner() (Step, bool) {
	for _, s := range p.Steps {
		if s.Kind == StepRemoveResource || s.Kind == StepRemoveGroup {
			return s, true
		}
	}
	return Step{}, false
}

// Markdown renders the plan as a numbered markdown list.
func (p *Plan) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Removal plan for `%s`\n\n", p.Target)
	for i, s := range p.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	return sb.String()
}

func applyStep(m *project.Model, s Step) error {
	owner, ok := m.Owner(s.Owner)
	if !ok {
		return project.NewError(project.ErrNotFound, string(s.Kind), s.Owner)
	}
	switch s.Kind {
	case StepUnbindAuth:
		*owner.Auth = nil
	case StepRemoveFunction:
		fns := *owner.Functions
		idx := slices.IndexFunc(fns, func(f project.Function) bool { return f.Name == s.Name })
		if idx < 0 {
			return project.NewError(project.ErrNotFound, string(s.Kind), s.Name)
		}
		*owner.Functions = slices.Delete(fns, idx, idx+1)
		if len(*owner.Functions) == 0 {
			*owner.Functions = nil
		}
		if auth := *owner.Auth; auth != nil {
			auth.Exclude = slices.DeleteFunc(auth.Exclude, func(n string) bool { return n == s.Name })
			if len(auth.Exclude) == 0 {
				auth.Exclude = nil
			}
		}
	case StepRemoveResource:
		m.Resources = slices.DeleteFunc(m.Resources, func(r project.Resource) bool { return r.Name == s.Name })
		if len(m.Resources) == 0 {
			m.Resources = nil
		}
	case StepRemoveGroup:
		m.FunctionGroups = slices.DeleteFunc(m.FunctionGroups, func(g project.FunctionGroup) bool { return g.Name == s.Name })
		if len(m.FunctionGroups) == 0 {
			m.FunctionGroups = nil
		}
	}
	return nil
}

// lessID orders independent steps by kind, then by id.
func lessID(g graph.Graph[string, Step], a, b string) bool {
	sa, errA := g.Vertex(a)
	sb, errB := g.Vertex(b)
	if errA != nil || errB != nil {
		return a < b
	}
	if rank[sa.Kind] != rank[sb.Kind] {
		return rank[sa.Kind] < rank[sb.Kind]
	}
	return a < b
}
