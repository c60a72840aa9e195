package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
)

// handlerGlob matches every handler stub below the functions directory.
var handlerGlob = path.Join(defs.FunctionsDir, "*", "*", defs.HandlerFile)

// Inspection compares a model with the tree on disk.
type Inspection struct {
	// Missing lists stub paths the model references that do not exist.
	Missing []string
	// Orphans lists handler directories the model does not reference.
	Orphans []string
}

// Clean reports whether the tree matches the model.
func (i *Inspection) Clean() bool {
	return len(i.Missing) == 0 && len(i.Orphans) == 0
}

// Inspect reports missing stubs and orphan handler directories under root.
func Inspect(root string, m *project.Model) (*Inspection, error) {
	var in Inspection
	for _, o := range m.Owners() {
		if o.Resource != nil {
			if err := checkMissing(root, ResourceModelPath(o.Name), &in); err != nil {
				return nil, err
			}
		}
		for _, fn := range *o.Functions {
			if err := checkMissing(root, HandlerPath(o.Name, fn.Name), &in); err != nil {
				return nil, err
			}
		}
	}

	orphans, err := Orphans(root, m)
	if err != nil {
		return nil, err
	}
	in.Orphans = orphans
	return &in, nil
}

func checkMissing(root, rel string, in *Inspection) error {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		in.Missing = append(in.Missing, rel)
		return nil
	}
	return err
}

// Orphans returns handler directories under root that no function of m
// owns, sorted.
func Orphans(root string, m *project.Model) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), handlerGlob)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", handlerGlob, err)
	}

	known := map[string]bool{}
	for _, o := range m.Owners() {
		for _, fn := range *o.Functions {
			known[HandlerDir(o.Name, fn.Name)] = true
		}
	}

	var orphans []string
	for _, match := range matches {
		dir := path.Dir(match)
		if !known[dir] {
			orphans = append(orphans, dir)
		}
	}
	slices.Sort(orphans)
	return orphans, nil
}
