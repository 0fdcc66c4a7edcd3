package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/summon/internal/store"
)

func TestBlobReadMissing(t *testing.T) {
	blob := NewBlob(filepath.Join(t.TempDir(), "missing.json"))

	_, err := blob.Read(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestBlobWriteCreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summon", "program_cache.json")
	blob := NewBlob(path)
	ctx := context.Background()

	if err := blob.Write(ctx, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := blob.Write(ctx, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got, err := blob.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("Read() = %s, want the last write", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries in dir", len(entries))
	}
}

func TestBlobCancelledContext(t *testing.T) {
	blob := NewBlob(filepath.Join(t.TempDir(), "x.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := blob.Write(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want context.Canceled", err)
	}
	if _, err := blob.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}
