// Package file persists the task set as a pretty-printed JSON array.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
)

// DefaultPath is the task file used when none is configured.
const DefaultPath = "tasks.txt"

// Replaced in tests to observe or break the commit step.
var (
	createTemp = os.CreateTemp
	renameFile = os.Rename
)

// Repository stores tasks in a single JSON file.
type Repository struct {
	path string
	perm os.FileMode
}

// New returns a repository backed by path. The file is not touched until
// the first Load or Save.
func New(path string) *Repository {
	if path == "" {
		path = DefaultPath
	}
	return &Repository{path: path, perm: 0644}
}

// Location returns the path of the task file.
func (r *Repository) Location() string {
	return r.path
}

// Close is a no-op; the file is only open during Load and Save.
func (r *Repository) Close() error {
	return nil
}

// Load reads every record from the task file.
func (r *Repository) Load(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, r.classify("read", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	// Entries stay untyped; the store rejects the ones that are not objects.
	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, errors.NewStorageError("decode "+r.path, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NewStorageError("decode "+r.path, fmt.Errorf("unexpected data after task array"))
	}
	return records, nil
}

// Save replaces the task file with records. The new content is written to a
// temporary file in the same directory and renamed over the target, so the
// task file is never observed half-written.
func (r *Repository) Save(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return errors.NewStorageError("encode tasks", err)
	}

	if err := r.writeAtomic(buf.Bytes()); err != nil {
		return r.classify("write", err)
	}
	return nil
}

func (r *Repository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	base := filepath.Base(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := createTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(r.targetMode()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFile(tmpName, r.path); err != nil {
		return err
	}
	committed = true

	// The rename is already durable on most filesystems; a failed directory
	// sync does not undo it.
	_ = syncDir(dir)
	return nil
}

// targetMode returns the permission bits of the existing file, or the
// default for a new one.
func (r *Repository) targetMode() os.FileMode {
	if info, err := os.Stat(r.path); err == nil {
		return info.Mode().Perm()
	}
	return r.perm
}

func (r *Repository) classify(op string, err error) error {
	switch {
	case stderrors.Is(err, fs.ErrNotExist) && op == "read":
		return fmt.Errorf("task file %s: %w", r.path, err)
	case stderrors.Is(err, fs.ErrPermission):
		return errors.NewPermissionError(op, r.path, err)
	default:
		return errors.NewStorageError(op+" "+r.path, err)
	}
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
