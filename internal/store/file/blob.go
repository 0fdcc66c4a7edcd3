// Package file stores blobs on the local filesystem.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/MrSnakeDoc/summon/internal/store"
)

// Blob is a document stored in a single file.
// Writes replace the file atomically, so readers never observe a partial
// document.
type Blob struct {
	path string
}

// NewBlob returns a blob backed by path. Parent directories are created on
// first write.
func NewBlob(path string) *Blob {
	return &Blob{path: path}
}

// Path returns the backing file path.
func (b *Blob) Path() string {
	return b.path
}

func (b *Blob) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	return data, nil
}

func (b *Blob) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := atomic.WriteFile(b.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	return nil
}

var _ store.Blob = (*Blob)(nil)
