// Package materialize projects a project model onto the file tree: handler
// stubs, resource models, the Makefile, the deployment descriptor and the
// local debugging template. Existing files are refreshed region by region
// so user code survives, and every change goes through a Journal so a
// failed run can be undone.
package materialize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/merge"
	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/template"
)

// ActionKind describes what happened to a file.
type ActionKind string

const (
	ActionCreated   ActionKind = "created"
	ActionUpdated   ActionKind = "updated"
	ActionDeleted   ActionKind = "deleted"
	ActionMoved     ActionKind = "moved"
	ActionUnchanged ActionKind = "unchanged"
	ActionSkipped   ActionKind = "skipped"
)

// FileAction is one file touched (or deliberately left alone) by Apply.
type FileAction struct {
	Path string
	Kind ActionKind
}

// Move re-parents a function's handler directory.
type Move struct {
	Function string
	From     string
	To       string
}

// Request describes one materialization.
type Request struct {
	// Previous is the committed model before the mutation; nil for a new project.
	Previous *project.Model
	// Model is the model being committed.
	Model *project.Model
	// Descriptor holds the synthesized descriptor bytes.
	Descriptor []byte
	// SAMTemplate holds the local debugging template; nil leaves it alone.
	SAMTemplate []byte
	// Moves lists functions that changed owner.
	Moves []Move
}

// Report summarizes a materialization.
type Report struct {
	Actions       []FileAction
	UnbackedEdits []string
	Warnings      []string
}

func (r *Report) add(p string, kind ActionKind) {
	r.Actions = append(r.Actions, FileAction{Path: p, Kind: kind})
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Changed returns the actions that modified the tree.
func (r *Report) Changed() []FileAction {
	var out []FileAction
	for _, a := range r.Actions {
		if a.Kind != ActionUnchanged && a.Kind != ActionSkipped {
			out = append(out, a)
		}
	}
	return out
}

// Materializer renders the file tree of a model.
type Materializer struct {
	renderer template.Renderer
	logger   *slog.Logger
}

// New creates a Materializer. A nil logger discards output.
func New(renderer template.Renderer, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Materializer{renderer: renderer, logger: logger}
}

type run struct {
	j      *Journal
	req    Request
	report *Report
	moved  map[string]bool // "owner/function" handler dirs that were moved away
}

// Apply brings the tree under j.Root() in line with req.Model. All changes
// are recorded in j; on error the caller is expected to roll j back.
func (m *Materializer) Apply(ctx context.Context, j *Journal, req Request) (*Report, error) {
	r := &run{j: j, req: req, report: &Report{}, moved: map[string]bool{}}

	steps := []struct {
		name string
		fn   func(*run) error
	}{
		{"base files", m.writeBase},
		{"descriptor", m.writeDescriptor},
		{"sam template", m.writeSAMTemplate},
		{"moves", m.moveHandlers},
		{"removals", m.removeStale},
		{"resource models", m.writeResourceModels},
		{"handlers", m.writeHandlers},
		{"makefile", m.writeMakefile},
		{"orphans", m.reportOrphans},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return r.report, err
		}
		if err := s.fn(r); err != nil {
			return r.report, err
		}
		m.logger.Debug("materialize step done", "step", s.name, "changes", j.Len())
	}
	return r.report, nil
}

func (m *Materializer) writeBase(r *run) error {
	if err := r.j.MkdirAll(defs.FunctionsDir); err != nil {
		return writeErr(defs.FunctionsDir, err)
	}
	pc := ProjectContext(r.req.Model)
	for _, f := range []struct{ tmpl, out string }{
		{template.ProjectGoMod, defs.GoMod},
		{template.ProjectGitIgnore, defs.GitIgnore},
	} {
		// Both files belong to the user once written.
		exists, err := fileExists(r.j.abs(f.out))
		if err != nil {
			return writeErr(f.out, err)
		}
		if exists {
			r.report.add(f.out, ActionUnchanged)
			continue
		}
		content, err := m.renderer.Render(f.tmpl, pc)
		if err != nil {
			return renderErr(f.out, err)
		}
		if err := r.j.WriteFile(f.out, content, 0o644); err != nil {
			return writeErr(f.out, err)
		}
		r.report.add(f.out, ActionCreated)
	}
	return nil
}

func (m *Materializer) writeDescriptor(r *run) error {
	return writeWhole(r, defs.DescriptorFile, r.req.Descriptor)
}

func (m *Materializer) writeSAMTemplate(r *run) error {
	if r.req.SAMTemplate == nil {
		return nil
	}
	return writeWhole(r, defs.SAMTemplateFile, r.req.SAMTemplate)
}

// writeWhole replaces rel with content. Projections are never merged.
func writeWhole(r *run, rel string, content []byte) error {
	prev, _, existed, err := snapshot(r.j.abs(rel))
	if err != nil {
		return writeErr(rel, err)
	}
	if existed && bytes.Equal(prev, content) {
		r.report.add(rel, ActionUnchanged)
		return nil
	}
	if err := r.j.WriteFile(rel, content, 0o644); err != nil {
		return writeErr(rel, err)
	}
	if existed {
		r.report.add(rel, ActionUpdated)
	} else {
		r.report.add(rel, ActionCreated)
	}
	return nil
}

// moveHandlers renames handler directories of re-parented functions. A
// stub nobody edited is re-rendered for its new owner afterwards.
func (m *Materializer) moveHandlers(r *run) error {
	for _, mv := range r.req.Moves {
		from, to := HandlerDir(mv.From, mv.Function), HandlerDir(mv.To, mv.Function)
		exists, err := fileExists(r.j.abs(from))
		if err != nil {
			return writeErr(from, err)
		}
		if !exists {
			continue
		}
		if taken, err := fileExists(r.j.abs(to)); err != nil {
			return writeErr(to, err)
		} else if taken {
			return project.Errorf(project.ErrMaterialization, "move handler", to, "target directory already exists")
		}

		pristine := false
		if r.req.Previous != nil {
			if fn, o, ok := r.req.Previous.FindFunction(mv.Function); ok {
				pristine, err = m.pristine(r.j.abs(HandlerPath(mv.From, mv.Function)), handlerTemplate(o), FunctionContext(r.req.Previous, o, *fn))
				if err != nil {
					return err
				}
			}
		}

		if err := r.j.Rename(from, to); err != nil {
			return writeErr(from, err)
		}
		r.moved[mv.From+"/"+mv.Function] = true
		r.report.add(to, ActionMoved)

		if pristine {
			if err := r.j.Remove(HandlerPath(mv.To, mv.Function)); err != nil {
				return writeErr(HandlerPath(mv.To, mv.Function), err)
			}
		}
	}
	return nil
}

// removeStale deletes stubs of functions and owners the model no longer has.
func (m *Materializer) removeStale(r *run) error {
	prev := r.req.Previous
	if prev == nil {
		return nil
	}
	for _, o := range prev.Owners() {
		for _, fn := range *o.Functions {
			if r.moved[o.Name+"/"+fn.Name] {
				continue
			}
			if _, co, ok := r.req.Model.FindFunction(fn.Name); ok && co.Name == o.Name {
				continue
			}
			stub := HandlerPath(o.Name, fn.Name)
			if err := m.removeGenerated(r, stub, handlerTemplate(o), FunctionContext(prev, o, fn)); err != nil {
				return err
			}
			if err := m.removeDir(r, HandlerDir(o.Name, fn.Name)); err != nil {
				return err
			}
		}

		if _, ok := r.req.Model.Owner(o.Name); ok {
			continue
		}
		if o.Resource != nil {
			if err := m.removeGenerated(r, ResourceModelPath(o.Name), template.ResourceModel, ResourceContext(*o.Resource)); err != nil {
				return err
			}
		}
		if err := m.removeDir(r, OwnerDir(o.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Materializer) removeGenerated(r *run, rel, tmpl string, data any) error {
	abs := r.j.abs(rel)
	exists, err := fileExists(abs)
	if err != nil {
		return writeErr(rel, err)
	}
	if !exists {
		return nil
	}
	pristine, err := m.pristine(abs, tmpl, data)
	if err != nil {
		return err
	}
	if !pristine {
		r.report.UnbackedEdits = append(r.report.UnbackedEdits, rel)
		m.logger.Warn("deleting file with user edits", "path", rel)
	}
	if err := r.j.Remove(rel); err != nil {
		return writeErr(rel, err)
	}
	r.report.add(rel, ActionDeleted)
	return nil
}

func (m *Materializer) removeDir(r *run, rel string) error {
	gone, err := r.j.RemoveDirIfEmpty(rel)
	if err != nil {
		return writeErr(rel, err)
	}
	if !gone {
		r.report.warn("%s still holds files not generated by mug and was kept", rel)
	}
	return nil
}

func (m *Materializer) writeResourceModels(r *run) error {
	for _, res := range r.req.Model.Resources {
		if err := m.writeGenerated(r, ResourceModelPath(res.Name), template.ResourceModel, ResourceContext(res)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Materializer) writeHandlers(r *run) error {
	model := r.req.Model
	for _, o := range model.Owners() {
		if err := r.j.MkdirAll(OwnerDir(o.Name)); err != nil {
			return writeErr(OwnerDir(o.Name), err)
		}
		for _, fn := range *o.Functions {
			if err := m.writeGenerated(r, HandlerPath(o.Name, fn.Name), handlerTemplate(o), FunctionContext(model, o, fn)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Materializer) writeMakefile(r *run) error {
	return m.writeGenerated(r, defs.Makefile, template.ProjectMakefile, ProjectContext(r.req.Model))
}

// writeGenerated creates rel from the template when missing, otherwise
// refreshes its generated regions and keeps every other byte.
func (m *Materializer) writeGenerated(r *run, rel, tmpl string, data any) error {
	fresh, err := m.renderer.Render(tmpl, data)
	if err != nil {
		return renderErr(rel, err)
	}

	current, mode, exists, err := snapshot(r.j.abs(rel))
	if err != nil {
		return writeErr(rel, err)
	}
	if !exists {
		if err := r.j.WriteFile(rel, fresh, 0o644); err != nil {
			return writeErr(rel, err)
		}
		r.report.add(rel, ActionCreated)
		return nil
	}

	doc, err := merge.Parse(current)
	if err != nil {
		r.report.warn("%s: %v; file left untouched", rel, err)
		r.report.add(rel, ActionSkipped)
		return nil
	}
	freshDoc, err := merge.Parse(fresh)
	if err != nil {
		return renderErr(rel, err)
	}
	refreshed, changed := doc.Refresh(freshDoc)
	if !changed {
		r.report.add(rel, ActionUnchanged)
		return nil
	}
	if err := r.j.WriteFile(rel, []byte(refreshed.String()), mode); err != nil {
		return writeErr(rel, err)
	}
	r.report.add(rel, ActionUpdated)
	return nil
}

// pristine reports whether the file at abs differs from a fresh render only
// inside generated regions.
func (m *Materializer) pristine(abs, tmpl string, data any) (bool, error) {
	current, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, writeErr(abs, err)
	}
	fresh, err := m.renderer.Render(tmpl, data)
	if err != nil {
		return false, renderErr(abs, err)
	}
	doc, err := merge.Parse(current)
	if err != nil {
		return false, nil
	}
	freshDoc, err := merge.Parse(fresh)
	if err != nil {
		return false, renderErr(abs, err)
	}
	return doc.SameLiterals(freshDoc), nil
}

func (m *Materializer) reportOrphans(r *run) error {
	orphans, err := Orphans(r.j.Root(), r.req.Model)
	if err != nil {
		return writeErr(defs.FunctionsDir, err)
	}
	for _, o := range orphans {
		r.report.warn("orphan handler directory %s is not part of the model", o)
	}
	return nil
}

func fileExists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func writeErr(subject string, err error) error {
	return &project.Error{Op: "materialize", Subject: filepath.ToSlash(subject), Kind: project.ErrMaterialization, Err: err}
}

func renderErr(subject string, err error) error {
	return &project.Error{Op: "render", Subject: path.Clean(filepath.ToSlash(subject)), Kind: project.ErrMaterialization, Err: err}
}
