package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crolly/mug/internal/project"
)

// Journal records every change made to a project tree so it can be undone.
// Paths passed to its methods are relative to the journal root.
type Journal struct {
	root string
	undo []undoStep
}

type undoStep struct {
	desc string
	fn   func() error
}

// NewJournal returns an empty journal for the tree at root.
func NewJournal(root string) *Journal {
	return &Journal{root: filepath.Clean(root)}
}

// Root returns the directory the journal operates on.
func (j *Journal) Root() string { return j.root }

// Len returns the number of recorded changes.
func (j *Journal) Len() int { return len(j.undo) }

func (j *Journal) abs(rel string) string {
	return filepath.Join(j.root, filepath.FromSlash(rel))
}

func (j *Journal) record(desc string, fn func() error) {
	j.undo = append(j.undo, undoStep{desc: desc, fn: fn})
}

// MkdirAll creates dir and any missing parents, recording each created
// directory.
func (j *Journal) MkdirAll(rel string) error {
	path := j.abs(rel)

	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		missing = append(missing, p)
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		dir := missing[i]
		if err := os.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
		j.record("mkdir "+dir, func() error { return os.Remove(dir) })
	}
	return nil
}

// WriteFile writes data atomically, remembering the previous content.
func (j *Journal) WriteFile(rel string, data []byte, perm fs.FileMode) error {
	path := j.abs(rel)
	if err := j.MkdirAll(filepath.ToSlash(filepath.Dir(rel))); err != nil {
		return err
	}

	prev, prevMode, existed, err := snapshot(path)
	if err != nil {
		return err
	}
	if err := project.AtomicWrite(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if existed {
		j.record("restore "+path, func() error { return project.AtomicWrite(path, prev, prevMode) })
	} else {
		j.record("remove "+path, func() error { return os.Remove(path) })
	}
	return nil
}

// Remove deletes a file, remembering its content.
func (j *Journal) Remove(rel string) error {
	path := j.abs(rel)
	prev, prevMode, existed, err := snapshot(path)
	if err != nil || !existed {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	j.record("restore "+path, func() error { return project.AtomicWrite(path, prev, prevMode) })
	return nil
}

// RemoveDirIfEmpty removes dir when it holds no entries. It reports whether
// the directory is gone.
func (j *Journal) RemoveDirIfEmpty(rel string) (bool, error) {
	path := j.abs(rel)
	entries, err := os.ReadDir(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read dir %s: %w", path, err)
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("remove dir %s: %w", path, err)
	}
	j.record("mkdir "+path, func() error { return os.Mkdir(path, 0o755) })
	return true, nil
}

// Rename moves a file or directory.
func (j *Journal) Rename(fromRel, toRel string) error {
	from, to := j.abs(fromRel), j.abs(toRel)
	if err := j.MkdirAll(filepath.ToSlash(filepath.Dir(toRel))); err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	j.record("rename "+to, func() error { return os.Rename(to, from) })
	return nil
}

// Rollback undoes every recorded change in reverse order. It keeps going
// after a failed step and returns all failures joined.
func (j *Journal) Rollback() error {
	var errs []error
	for i := len(j.undo) - 1; i >= 0; i-- {
		step := j.undo[i]
		if err := step.fn(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("undo %s: %w", step.desc, err))
		}
	}
	j.undo = nil
	return errors.Join(errs...)
}

// snapshot reads a file's content and mode. A missing file is not an error.
func snapshot(path string) ([]byte, fs.FileMode, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, 0, false, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, info.Mode().Perm(), true, nil
}
