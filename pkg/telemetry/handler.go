// Package telemetry is the ingestion-run audit log: a slog.Handler that
// mirrors error-level log records into batched Parquet files, keyed by the
// ingestion_id/file/node_id values a caller attaches to the record's context
// with WithIngestionID/WithFile/WithNodeID.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

type contextKey int

const (
	ContextKeyIngestionID contextKey = iota
	ContextKeyFile
	ContextKeyNodeID
)

// WithIngestionID attaches the ingestion id that scopes the current
// request to ctx, so any error logged beneath it is attributed correctly.
func WithIngestionID(ctx context.Context, ingestionID string) context.Context {
	return context.WithValue(ctx, ContextKeyIngestionID, ingestionID)
}

// WithFile attaches the input file name currently being processed.
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, ContextKeyFile, file)
}

// WithNodeID attaches the node identifier a log record pertains to.
func WithNodeID(ctx context.Context, nodeID string) context.Context {
	return context.WithValue(ctx, ContextKeyNodeID, nodeID)
}

// LogRecord is one audit entry written to a Parquet file.
type LogRecord struct {
	ID          string    `parquet:"id"`
	Timestamp   time.Time `parquet:"timestamp"`
	Level       string    `parquet:"level"`
	Message     string    `parquet:"message"`
	IngestionID string    `parquet:"ingestion_id"`
	File        string    `parquet:"file"`
	NodeID      string    `parquet:"node_id"`
	SourceFile  string    `parquet:"source_file"`
	LineNumber  int       `parquet:"line_number"`
	Attributes  string    `parquet:"attributes"`
}

// ParquetHandler is a slog.Handler that writes error-and-above logs to
// batched Parquet files, alongside forwarding every record to next.
type ParquetHandler struct {
	next      slog.Handler
	outputDir string
	mu        sync.Mutex
	buffer    []LogRecord
	batchSize int
}

// NewParquetHandler creates a ParquetHandler writing into outputDir,
// flushing every batchSize error records to a new file.
func NewParquetHandler(next slog.Handler, outputDir string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	h := &ParquetHandler{
		next:      next,
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]LogRecord, 0, 100),
	}

	return h, nil
}

// Enabled implements slog.Handler.
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level < slog.LevelError {
		return nil
	}

	var ingestionID, file, nodeID string
	if v, ok := ctx.Value(ContextKeyIngestionID).(string); ok {
		ingestionID = v
	}
	if v, ok := ctx.Value(ContextKeyFile).(string); ok {
		file = v
	}
	if v, ok := ctx.Value(ContextKeyNodeID).(string); ok {
		nodeID = v
	}

	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	attrsJSON, _ := json.Marshal(attrs)

	fs := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := fs.Next()

	record := LogRecord{
		ID:          uuid.New().String(),
		Timestamp:   r.Time.UTC(),
		Level:       r.Level.String(),
		Message:     r.Message,
		IngestionID: ingestionID,
		File:        file,
		NodeID:      nodeID,
		SourceFile:  f.File,
		LineNumber:  f.Line,
		Attributes:  string(attrsJSON),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, record)
	if len(h.buffer) >= h.batchSize {
		return h.flush()
	}
	return nil
}

// flush writes the current buffer to a new Parquet file. Caller must hold
// the lock.
func (h *ParquetHandler) flush() error {
	if len(h.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("ingestion_errors_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(h.outputDir, filename)

	if err := parquet.WriteFile(path, h.buffer); err != nil {
		fmt.Printf("failed to write telemetry parquet file: %v\n", err)
		return err
	}

	h.buffer = h.buffer[:0]
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithAttrs(attrs),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]LogRecord, 0, h.batchSize),
	}
}

// WithGroup implements slog.Handler.
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithGroup(name),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]LogRecord, 0, h.batchSize),
	}
}
