// Package engine implements the mutations of a mug project. Every operation
// loads the model, validates its preconditions, applies the change to a
// copy, resynthesizes the descriptor, materializes the file tree and only
// then commits the model. A failure after the first file was touched rolls
// the tree back.
package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/r3labs/diff"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/descriptor"
	"github.com/crolly/mug/internal/materialize"
	"github.com/crolly/mug/internal/merge"
	"github.com/crolly/mug/internal/planner"
	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/template"
)

// Result describes the outcome of an operation.
type Result struct {
	// Model is the committed model. Previews carry the model that would be
	// committed, removal dry runs the current one.
	Model *project.Model
	// Descriptor holds the synthesized descriptor bytes.
	Descriptor []byte
	// Changelog lists the model fields that changed.
	Changelog diff.Changelog
	// Plan is set for removals.
	Plan *planner.Plan
	// Actions lists the files created, updated, moved or deleted.
	Actions []materialize.FileAction
	// UnbackedEdits lists deleted files that carried user edits.
	UnbackedEdits []string
	Warnings      []string
	// DescriptorDiff is set by previews.
	DescriptorDiff string
	DryRun         bool
}

// Engine runs project mutations.
type Engine struct {
	renderer     template.Renderer
	materializer *materialize.Materializer
	logger       *slog.Logger
	dryRun       bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its materializer.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRenderer replaces the embedded templates, mostly for tests.
func WithRenderer(r template.Renderer) Option {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// New creates an Engine over the embedded templates.
func New(opts ...Option) *Engine {
	e := &Engine{
		renderer: template.NewDefaultRenderer(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.materializer = materialize.New(e.renderer, e.logger)
	return e
}

// Preview returns an engine that validates and synthesizes like e but
// writes nothing. Its results carry the descriptor diff.
func (e *Engine) Preview() *Engine {
	p := *e
	p.dryRun = true
	return &p
}

// mutation is one validated change waiting to be committed.
type mutation struct {
	op       string
	root     string
	previous *project.Model // nil when creating a project
	next     *project.Model
	moves    []materialize.Move
	plan     *planner.Plan
}

// load reads the model at root after checking ctx.
func (e *Engine) load(ctx context.Context, root string) (*project.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return project.Load(root)
}

// commit runs resynthesis, materialization and the model save for mu.
func (e *Engine) commit(ctx context.Context, mu mutation) (*Result, error) {
	root := filepath.Clean(mu.root)
	mu.next.Root = root

	if err := mu.next.Validate(); err != nil {
		return nil, &project.Error{Op: mu.op, Kind: project.ErrValidation, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	desc, err := descriptor.Render(mu.next)
	if err != nil {
		return nil, &project.Error{Op: mu.op, Subject: "descriptor", Kind: project.ErrMaterialization, Err: err}
	}
	if e.dryRun {
		return e.preview(mu, root, desc), nil
	}
	sam, err := descriptor.RenderSAM(mu.next)
	if err != nil {
		return nil, &project.Error{Op: mu.op, Subject: defs.SAMTemplateFile, Kind: project.ErrMaterialization, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	journal := materialize.NewJournal(root)
	if err := journal.MkdirAll("."); err != nil {
		return nil, &project.Error{Op: mu.op, Subject: root, Kind: project.ErrMaterialization, Err: err}
	}
	report, err := e.materializer.Apply(ctx, journal, materialize.Request{
		Previous:    mu.previous,
		Model:       mu.next,
		Descriptor:  desc,
		SAMTemplate: sam,
		Moves:       mu.moves,
	})
	if err != nil {
		return nil, e.rollback(mu.op, journal, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, e.rollback(mu.op, journal, err)
	}
	if err := project.Save(mu.next, root); err != nil {
		return nil, e.rollback(mu.op, journal, err)
	}

	res := &Result{
		Model:         mu.next,
		Descriptor:    desc,
		Plan:          mu.plan,
		Actions:       report.Changed(),
		UnbackedEdits: report.UnbackedEdits,
		Warnings:      report.Warnings,
	}
	res.Changelog = e.changelog(mu.previous, mu.next)

	e.logger.Info("operation committed",
		"op", mu.op,
		"root", root,
		"files", len(res.Actions),
		"changes", len(res.Changelog),
	)
	for _, w := range res.Warnings {
		e.logger.Warn(w, "op", mu.op)
	}
	return res, nil
}

// preview describes mu without applying it. A missing descriptor diffs
// as empty.
func (e *Engine) preview(mu mutation, root string, desc []byte) *Result {
	onDisk, err := os.ReadFile(filepath.Join(root, defs.DescriptorFile))
	if err != nil {
		onDisk = nil
	}
	return &Result{
		Model:          mu.next,
		Descriptor:     desc,
		Plan:           mu.plan,
		Changelog:      e.changelog(mu.previous, mu.next),
		DescriptorDiff: merge.UnifiedDiff(defs.DescriptorFile, onDisk, desc),
		DryRun:         true,
	}
}

// rollback undoes the journal. A failed rollback is reported as
// ErrInconsistent wrapping both failures.
func (e *Engine) rollback(op string, j *materialize.Journal, cause error) error {
	e.logger.Warn("rolling back", "op", op, "changes", j.Len(), "error", cause)
	if rbErr := j.Rollback(); rbErr != nil {
		e.logger.Error("rollback failed", "op", op, "error", rbErr)
		return &project.Error{
			Op:      op,
			Subject: j.Root(),
			Kind:    project.ErrInconsistent,
			Err:     errors.Join(cause, rbErr),
		}
	}
	if project.KindOf(cause) == nil && !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		return &project.Error{Op: op, Subject: j.Root(), Kind: project.ErrMaterialization, Err: cause}
	}
	return cause
}

// changelog diffs two models. A model that cannot be diffed yields no
// changelog; the change itself is already committed.
func (e *Engine) changelog(prev, next *project.Model) diff.Changelog {
	if prev == nil {
		prev = &project.Model{}
	}
	a, b := prev.Clone(), next.Clone()
	a.Root, b.Root = "", ""
	cl, err := diff.Diff(a, b)
	if err != nil {
		e.logger.Debug("model changelog unavailable", "error", err)
		return nil
	}
	return cl
}
