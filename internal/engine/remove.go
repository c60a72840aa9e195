package engine

import (
	"context"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/planner"
	"github.com/crolly/mug/internal/project"
)

// RemoveOptions configures Remove.
type RemoveOptions struct {
	// DryRun returns the removal plan without touching anything.
	DryRun bool
}

// Remove deletes a resource or group together with its functions and auth
// binding.
func (e *Engine) Remove(ctx context.Context, root, name string, opts RemoveOptions) (*Result, error) {
	const op = "remove"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanRemoval(current, project.Normalize(name))
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		return &Result{Model: current, Plan: plan, DryRun: true}, nil
	}
	return e.applyPlan(ctx, op, root, current, plan)
}

// PlanRemove returns the plan Remove would execute.
func (e *Engine) PlanRemove(ctx context.Context, root, name string) (*planner.Plan, error) {
	res, err := e.Remove(ctx, root, name, RemoveOptions{DryRun: true})
	if err != nil {
		return nil, err
	}
	return res.Plan, nil
}

// RemoveFunction deletes a function of assignedTo, the default group when
// empty.
func (e *Engine) RemoveFunction(ctx context.Context, root, name, assignedTo string) (*Result, error) {
	const op = "remove function"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	owner := project.Normalize(assignedTo)
	if owner == "" {
		owner = defs.DefaultGroup
	}
	plan, err := planner.PlanFunctionRemoval(current, project.Normalize(name), owner)
	if err != nil {
		return nil, err
	}
	return e.applyPlan(ctx, op, root, current, plan)
}

// RemoveAuth deletes the auth binding of target.
func (e *Engine) RemoveAuth(ctx context.Context, root, target string) (*Result, error) {
	const op = "remove auth"
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	plan, err := planner.PlanAuthRemoval(current, project.Normalize(target))
	if err != nil {
		return nil, err
	}
	return e.applyPlan(ctx, op, root, current, plan)
}

func (e *Engine) applyPlan(ctx context.Context, op, root string, current *project.Model, plan *planner.Plan) (*Result, error) {
	next := current.Clone()
	if err := plan.Apply(next); err != nil {
		return nil, err
	}
	e.logger.Debug("applying removal plan", "op", op, "target", plan.Target, "steps", len(plan.Steps))
	return e.commit(ctx, mutation{op: op, root: root, previous: current, next: next, plan: plan})
}
