package engine

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/descriptor"
	"github.com/crolly/mug/internal/materialize"
	"github.com/crolly/mug/internal/merge"
	"github.com/crolly/mug/internal/project"
)

// Status compares a project's tree with its model.
type Status struct {
	Model *project.Model
	// DescriptorStale is set when serverless.yml differs from a fresh synthesis.
	DescriptorStale bool
	// DescriptorDiff is a unified diff from the file on disk to the fresh descriptor.
	DescriptorDiff string
	// SAMTemplateStale is set when template.yml is missing or out of date.
	SAMTemplateStale bool
	Missing          []string
	Orphans          []string
}

// Clean reports whether the tree matches the model.
func (s *Status) Clean() bool {
	return !s.DescriptorStale && !s.SAMTemplateStale && len(s.Missing) == 0 && len(s.Orphans) == 0
}

// Status inspects the project at root without changing it.
func (e *Engine) Status(ctx context.Context, root string) (*Status, error) {
	m, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}

	fresh, err := descriptor.Render(m)
	if err != nil {
		return nil, &project.Error{Op: "status", Subject: "descriptor", Kind: project.ErrMaterialization, Err: err}
	}
	onDisk, err := os.ReadFile(filepath.Join(root, defs.DescriptorFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &project.Error{Op: "status", Subject: defs.DescriptorFile, Kind: project.ErrMaterialization, Err: err}
	}

	freshSAM, err := descriptor.RenderSAM(m)
	if err != nil {
		return nil, &project.Error{Op: "status", Subject: defs.SAMTemplateFile, Kind: project.ErrMaterialization, Err: err}
	}
	samOnDisk, err := os.ReadFile(filepath.Join(root, defs.SAMTemplateFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &project.Error{Op: "status", Subject: defs.SAMTemplateFile, Kind: project.ErrMaterialization, Err: err}
	}

	in, err := materialize.Inspect(root, m)
	if err != nil {
		return nil, &project.Error{Op: "status", Subject: root, Kind: project.ErrMaterialization, Err: err}
	}

	st := &Status{
		Model:            m,
		SAMTemplateStale: !bytes.Equal(samOnDisk, freshSAM),
		Missing:          in.Missing,
		Orphans:          in.Orphans,
	}
	if !bytes.Equal(onDisk, fresh) {
		st.DescriptorStale = true
		st.DescriptorDiff = merge.UnifiedDiff(defs.DescriptorFile, onDisk, fresh)
	}
	e.logger.Debug("status computed",
		"root", root,
		"stale", st.DescriptorStale,
		"missing", strings.Join(st.Missing, ","),
		"orphans", len(st.Orphans),
	)
	return st, nil
}

// Sync re-materializes the unchanged model, recreating missing stubs, the
// descriptor and the debugging template.
func (e *Engine) Sync(ctx context.Context, root string) (*Result, error) {
	current, err := e.load(ctx, root)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, mutation{op: "sync", root: root, previous: current, next: current.Clone()})
}
