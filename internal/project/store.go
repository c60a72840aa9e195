package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/crolly/mug/internal/defs"
)

// ModelPath returns the model file path for a project root.
func ModelPath(root string) string {
	return filepath.Join(filepath.Clean(root), defs.ModelFile)
}

// Load reads the model of the project at root.
// It returns ErrNotFound if the model file does not exist and
// ErrCorruptModel if it cannot be decoded into a valid model.
func Load(root string) (*Model, error) {
	path := ModelPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(ErrNotFound, "load model", path)
		}
		return nil, &Error{Op: "load model", Subject: path, Kind: ErrCorruptModel, Err: err}
	}

	m, err := Decode(data)
	if err != nil {
		return nil, &Error{Op: "load model", Subject: path, Kind: ErrCorruptModel, Err: err}
	}
	m.Root = filepath.Clean(root)
	return m, nil
}

// Decode parses and validates a serialized model. Unknown fields are kept
// in the Extra maps.
func Decode(data []byte) (*Model, error) {
	var m Model
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", defs.ModelFile, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode serializes the model.
func Encode(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", defs.ModelFile, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", defs.ModelFile, err)
	}
	return buf.Bytes(), nil
}

// Save writes the model to root atomically: either the file holds the new
// model in full, or it is left unchanged.
func Save(m *Model, root string) error {
	path := ModelPath(root)
	data, err := Encode(m)
	if err != nil {
		return &Error{Op: "save model", Subject: path, Kind: ErrWrite, Err: err}
	}
	if err := AtomicWrite(path, data, 0o644); err != nil {
		return &Error{Op: "save model", Subject: path, Kind: ErrWrite, Err: err}
	}
	return nil
}

// AtomicWrite writes data to a temp file in the destination directory and
// renames it over path.
func AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mug-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
