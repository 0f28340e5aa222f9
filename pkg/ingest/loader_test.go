package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFileLoaderReadsAndDecodes(t *testing.T) {
	dir := t.TempDir()
	content := `{"nodes":[{"name":"r","kind":"K","children":[]}],"relations":[]}`
	if err := os.WriteFile(filepath.Join(dir, "example.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	loader := NewLocalFileLoader(dir)
	doc, err := loader.Load(context.Background(), "example.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Name != "r" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestLocalFileLoaderMissingFile(t *testing.T) {
	loader := NewLocalFileLoader(t.TempDir())
	if _, err := loader.Load(context.Background(), "missing.json"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLocalFileLoaderInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	loader := NewLocalFileLoader(dir)
	if _, err := loader.Load(context.Background(), "bad.json"); err == nil {
		t.Fatal("expected a decode error")
	}
}
