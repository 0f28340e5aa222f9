package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/storage"
	"github.com/soundprediction/graphsvc/pkg/traversal"
)

type noopIngestor struct{}

func (noopIngestor) Ingest(ctx context.Context, ingestionID string, files []string) error {
	return nil
}

type noopNodeReader struct{}

func (noopNodeReader) GetNode(ctx context.Context, id uuid.UUID, includeTags, includeRelations bool) (*storage.Node, error) {
	return nil, nil
}

type noopTraverser struct{}

func (noopTraverser) Traverse(ctx context.Context, seed uuid.UUID, direction traversal.Direction, relationKind string, maxDepth int) (*traversal.Node, error) {
	return nil, nil
}
