package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// FileBackend keeps the document in a single JSON file.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}

		return nil, errors.Wrapf(err, "read %s", b.path)
	}

	return data, nil
}

func (b *FileBackend) Write(_ context.Context, data []byte) error {
	return WriteFileAtomic(b.path, data)
}

// WriteFileAtomic writes data next to path and renames it into place, creating parent directories.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "rename to %s", path)
	}

	return nil
}
