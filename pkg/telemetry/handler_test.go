package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParquetHandlerFlushesOnBatchSize(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, nil)

	h, err := NewParquetHandler(next, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.batchSize = 2

	ctx := WithIngestionID(context.Background(), "batch-1")
	ctx = WithFile(ctx, "a.json")

	logger := slog.New(h)
	logger.ErrorContext(ctx, "row insert failed")
	logger.ErrorContext(ctx, "row insert failed again")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 flushed parquet file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".parquet" {
		t.Fatalf("expected a .parquet file, got %q", entries[0].Name())
	}
}

func TestParquetHandlerIgnoresBelowErrorLevel(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, nil)

	h, err := NewParquetHandler(next, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.New(h)
	logger.Info("just ingested a file")

	if len(h.buffer) != 0 {
		t.Fatalf("expected info-level logs not to be buffered, got %d", len(h.buffer))
	}
	if buf.Len() == 0 {
		t.Fatal("expected the info log to still reach the wrapped handler")
	}
}

func TestParquetHandlerWithAttrsPreservesOutputDir(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(os.Stderr, nil), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := h.WithAttrs([]slog.Attr{slog.String("component", "ingest")}).(*ParquetHandler)
	if child.outputDir != dir {
		t.Fatalf("expected outputDir to be preserved, got %q", child.outputDir)
	}
}
