// Package traversal implements the depth-bounded graph walk (C8): starting
// at a seed node, it follows edges in one direction, optionally filtered by
// relation kind, up to a bounded depth.
package traversal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/row"
	"github.com/soundprediction/graphsvc/pkg/storage"
	"github.com/soundprediction/graphsvc/pkg/utils"
)

// Direction is the 2-valued API direction accepted by Traverse. It is
// distinct from the 3-valued row.Direction clustering sentinel used by the
// storage layer — see spec §9 "Two direction-like enumerations".
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ParseDirection validates and normalizes a caller-supplied direction
// string. It is case-insensitive; any other value is a validation error.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case string(DirectionIn):
		return DirectionIn, nil
	case string(DirectionOut):
		return DirectionOut, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be %q or %q", s, DirectionIn, DirectionOut)
	}
}

// ParseRelationKind validates and normalizes an optional relation-kind
// filter. An empty string means "no filter". Any non-empty value other than
// "parent"/"child" is a validation error — the traversal engine only
// understands the tree-structural relation kinds.
func ParseRelationKind(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	switch strings.ToLower(s) {
	case "parent":
		return row.RelationParent, nil
	case "child":
		return row.RelationChild, nil
	default:
		return "", fmt.Errorf("invalid relation_type %q: must be \"parent\" or \"child\"", s)
	}
}

// Node is one node of the returned traversal tree.
type Node struct {
	UUID        uuid.UUID `json:"uuid"`
	Depth       int       `json:"depth"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Relations   []*Node   `json:"relations"`
	RelationIDs []string  `json:"relation_ids"`
}

// Scanner is the subset of *storage.Gateway the traversal engine depends
// on, narrowed for testability.
type Scanner interface {
	ScanEdges(ctx context.Context, id uuid.UUID, direction string, relationKind string) ([]storage.ScanRow, error)
}

var _ Scanner = (*storage.Gateway)(nil)

// Engine walks a Scanner's row layout.
type Engine struct {
	gw Scanner
}

// New returns a traversal Engine bound to gw.
func New(gw Scanner) *Engine {
	return &Engine{gw: gw}
}

// Traverse runs the bounded walk from seed in the given direction, filtered
// by relationKind (row.RelationParent, row.RelationChild, or "" for no
// filter), down to maxDepth. It returns nil when the seed itself does not
// exist — never an error, per spec §7. The recursion is not cycle-protected;
// the depth bound is the sole termination guarantee (spec §9), so a diamond
// in the graph is reported twice.
func (e *Engine) Traverse(ctx context.Context, seed uuid.UUID, direction Direction, relationKind string, maxDepth int) (*Node, error) {
	rowDirection := string(row.DirectionOut)
	if direction == DirectionIn {
		rowDirection = string(row.DirectionIn)
	}
	return e.visit(ctx, seed, rowDirection, relationKind, 0, maxDepth)
}

func (e *Engine) visit(ctx context.Context, id uuid.UUID, rowDirection, relationKind string, depth, maxDepth int) (*Node, error) {
	rows, err := e.gw.ScanEdges(ctx, id, rowDirection, relationKind)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	self := rows[0]
	edges := rows[1:]

	node := &Node{
		UUID:        id,
		Depth:       depth,
		Name:        self.Name,
		Type:        self.NodeType,
		RelationIDs: make([]string, len(edges)),
	}
	for i, r := range edges {
		node.RelationIDs[i] = r.RelatesTo
	}

	if depth < maxDepth && len(edges) > 0 {
		children, err := e.visitChildren(ctx, edges, rowDirection, relationKind, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		node.Relations = children
	}

	return node, nil
}

// visitChildren recurses over each edge concurrently, bounded by the
// default semaphore limit, collecting the non-nil children in edge order.
func (e *Engine) visitChildren(ctx context.Context, edges []storage.ScanRow, rowDirection, relationKind string, depth, maxDepth int) ([]*Node, error) {
	fns := make([]func() (*Node, error), len(edges))
	for i, edge := range edges {
		peerID, err := uuid.Parse(edge.RelatesTo)
		if err != nil {
			return nil, fmt.Errorf("traversal: invalid peer id %q: %w", edge.RelatesTo, err)
		}
		fns[i] = func() (*Node, error) {
			return e.visit(ctx, peerID, rowDirection, relationKind, depth, maxDepth)
		}
	}

	results, errs := utils.ExecuteWithResults(ctx, utils.GetSemaphoreLimit(), fns...)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var children []*Node
	for _, n := range results {
		if n != nil {
			children = append(children, n)
		}
	}
	return children, nil
}
