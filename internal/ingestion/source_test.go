package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

func TestOpenerLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell-count.csv")
	if err := os.WriteFile(path, []byte("project\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	rc, err := NewOpener(nil).Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "project\n" {
		t.Fatalf("content: got=%q", b)
	}
}

func TestOpenerMissingSource(t *testing.T) {
	_, err := NewOpener(nil).Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, cytometry.ErrIngest) || !errors.Is(err, cytometry.ErrNotFound) {
		t.Fatalf("want ingest+not found got=%v", err)
	}
}

func TestOpenerGSWithoutStorage(t *testing.T) {
	_, err := NewOpener(nil).Open(context.Background(), "gs://bucket/cell-count.csv")
	if !errors.Is(err, cytometry.ErrIngest) {
		t.Fatalf("want ingest error got=%v", err)
	}
}
