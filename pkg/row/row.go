// Package row defines the flat wide-column row shape that a node tree plus
// relation list is denormalized into, and the relation indexer that builds
// the per-path edge map C5 consumes.
package row

import (
	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/graphdoc"
	"github.com/soundprediction/graphsvc/pkg/ident"
)

// Direction is the row-layout clustering sentinel: "" marks a self-row, "In"
// and "Out" mark edge rows. It is distinct from the 2-valued API direction
// used by the traversal engine (In/Out only) — see pkg/traversal.
type Direction string

const (
	DirectionSelf Direction = ""
	DirectionIn   Direction = "In"
	DirectionOut  Direction = "Out"
)

// Relation clustering values reserved for the tree-structural edges; any
// other non-empty value is a user-supplied relation kind.
const (
	RelationSelf   = ""
	RelationParent = "Parent"
	RelationChild  = "Child"
)

// Row is a single wide-column record. Self-row fields (IngestionID, Path,
// NodeType, Tags) are populated only on self-rows; edge rows leave them
// zero-valued.
type Row struct {
	ID           uuid.UUID     `json:"id"`
	Direction    Direction     `json:"direction"`
	Relation     string        `json:"relation"`
	RelatesTo    string        `json:"relates_to"`
	Name         string        `json:"name"`
	IngestionID  string        `json:"ingestion_id,omitempty"`
	Path         string        `json:"path,omitempty"`
	NodeType     string        `json:"node_type,omitempty"`
	Tags         []graphdoc.Tag `json:"tags,omitempty"`
}

// IsSelfRow reports whether r is the self-row of its partition.
func (r Row) IsSelfRow() bool {
	return r.Direction == DirectionSelf && r.Relation == RelationSelf
}

// Edge is a directed edge peer as produced by the relation indexer: one kind
// of edge row, not yet attached to the node it originates from.
type Edge struct {
	Kind      string
	Outbound  bool
	PeerName  string
	PeerIDText string
}

// BuildEdgeIndex builds the path -> []Edge map described in the relation
// indexer (C4): for every relation, one outbound entry is recorded at the
// source path and one inbound entry at the target path.
func BuildEdgeIndex(ingestionID string, relations []graphdoc.Relation) map[string][]Edge {
	index := make(map[string][]Edge)
	for _, r := range relations {
		sourcePath := graphdoc.JoinPath(r.Source)
		targetPath := graphdoc.JoinPath(r.Target)

		index[sourcePath] = append(index[sourcePath], Edge{
			Kind:       r.Kind,
			Outbound:   true,
			PeerName:   lastSegment(targetPath),
			PeerIDText: ident.NodeID(ingestionID, targetPath).String(),
		})
		index[targetPath] = append(index[targetPath], Edge{
			Kind:       r.Kind,
			Outbound:   false,
			PeerName:   lastSegment(sourcePath),
			PeerIDText: ident.NodeID(ingestionID, sourcePath).String(),
		})
	}
	return index
}

// lastSegment returns the last "/"-delimited segment of path, falling back
// to "default" when path is empty (an empty source/target list).
func lastSegment(path string) string {
	if path == "" {
		return "default"
	}
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	return last
}
