// Package ingest is the bounded-concurrency orchestrator (C7): one task per
// input file, each task loading the file, building its relation index (C4),
// flattening its node tree (C5), and submitting the resulting rows to the
// storage gateway (C6).
package ingest

import (
	"context"
	"log/slog"

	"github.com/soundprediction/graphsvc/pkg/flatten"
	"github.com/soundprediction/graphsvc/pkg/row"
	"github.com/soundprediction/graphsvc/pkg/storage"
	"github.com/soundprediction/graphsvc/pkg/utils"
)

// Gateway is the subset of *storage.Gateway the orchestrator depends on,
// narrowed for testability.
type Gateway interface {
	InsertRows(ctx context.Context, rows []row.Row) error
}

var _ Gateway = (*storage.Gateway)(nil)

// SearchIndexer is the subset of *search.Indexer the orchestrator depends
// on. It is optional: a nil SearchIndexer disables the secondary indexing
// path entirely, as does an Indexer built with SearchConfig.Enabled=false.
type SearchIndexer interface {
	IndexSelfRows(ctx context.Context, rows []row.Row)
}

// Orchestrator fans a batch of files out across a process-wide permit
// budget. It never returns an error from processing an individual file —
// per spec §7/§9, ingestion failures are logged and swallowed, and the
// request succeeds once every file task has terminated.
type Orchestrator struct {
	Loader        FileLoader
	Gateway       Gateway
	Search        SearchIndexer
	ParallelFiles int
}

// New returns an Orchestrator bounding file-processing fan-out to
// parallelFiles concurrent tasks. A non-positive value falls back to the
// shared default semaphore limit. search may be nil to disable the
// secondary Elasticsearch indexing path.
func New(loader FileLoader, gw Gateway, search SearchIndexer, parallelFiles int) *Orchestrator {
	if parallelFiles <= 0 {
		parallelFiles = utils.GetSemaphoreLimit()
	}
	return &Orchestrator{Loader: loader, Gateway: gw, Search: search, ParallelFiles: parallelFiles}
}

// Ingest processes every name in files under ingestionID. It blocks until
// every file task has acquired and released its permit, then returns nil —
// the request-level result is always success, regardless of how many
// individual files failed (spec §4.5/§7).
func (o *Orchestrator) Ingest(ctx context.Context, ingestionID string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	executor := utils.NewFilePermitExecutor(o.ParallelFiles)
	fns := make([]func() error, len(files))
	for i, name := range files {
		name := name
		fns[i] = func() error {
			o.processFile(ctx, ingestionID, name)
			return nil
		}
	}
	executor.Execute(ctx, fns...)
	return nil
}

// processFile runs the load -> index -> flatten -> insert pipeline for a
// single file. Any failure at any stage is logged and discarded; it never
// propagates to Ingest's caller.
func (o *Orchestrator) processFile(ctx context.Context, ingestionID, name string) {
	doc, err := o.Loader.Load(ctx, name)
	if err != nil {
		slog.Error("ingest: failed to load file", "ingestion_id", ingestionID, "file", name, "error", err)
		return
	}

	edgesByPath := row.BuildEdgeIndex(ingestionID, doc.Relations)
	rows := flatten.Flatten(ingestionID, doc.Nodes, edgesByPath)
	if len(rows) == 0 {
		return
	}

	if err := o.Gateway.InsertRows(ctx, rows); err != nil {
		slog.Error("ingest: failed to persist rows", "ingestion_id", ingestionID, "file", name, "rows", len(rows), "error", err)
	}

	if o.Search != nil {
		o.Search.IndexSelfRows(ctx, rows)
	}
}
