// Package flatten walks an input node forest depth-first and emits the flat
// row stream that the storage gateway persists: one self-row per node plus
// its parent/child/relation edge rows.
package flatten

import (
	"github.com/soundprediction/graphsvc/pkg/graphdoc"
	"github.com/soundprediction/graphsvc/pkg/ident"
	"github.com/soundprediction/graphsvc/pkg/row"
)

// peer identifies a node already emitted (or about to be) by id and name,
// used to link parent/child edge rows without recomputing the identifier.
type peer struct {
	id   string
	name string
}

// Flatten walks nodes depth-first, pre-order, and returns every row the
// tree produces. edgesByPath is the output of row.BuildEdgeIndex for the
// same ingestion and is looked up by each node's path.
func Flatten(ingestionID string, nodes []graphdoc.Node, edgesByPath map[string][]row.Edge) []row.Row {
	var rows []row.Row
	for _, n := range nodes {
		rows = append(rows, flattenNode(ingestionID, n, "", nil, edgesByPath)...)
	}
	return rows
}

func flattenNode(ingestionID string, n graphdoc.Node, parentPath string, parent *peer, edgesByPath map[string][]row.Edge) []row.Row {
	path := parentPath + "/" + n.Name
	id := ident.NodeID(ingestionID, path)
	idText := id.String()

	var rows []row.Row

	rows = append(rows, row.Row{
		ID:          id,
		Direction:   row.DirectionSelf,
		Relation:    row.RelationSelf,
		RelatesTo:   "",
		Name:        n.Name,
		IngestionID: ingestionID,
		Path:        path,
		NodeType:    n.Kind,
		Tags:        tagsOrEmpty(n.Tags),
	})

	if parent != nil {
		rows = append(rows, row.Row{
			ID:        id,
			Direction: row.DirectionIn,
			Relation:  row.RelationParent,
			RelatesTo: parent.id,
			Name:      parent.name,
		})
	}

	for _, e := range edgesByPath[path] {
		dir := row.DirectionIn
		if e.Outbound {
			dir = row.DirectionOut
		}
		rows = append(rows, row.Row{
			ID:        id,
			Direction: dir,
			Relation:  e.Kind,
			RelatesTo: e.PeerIDText,
			Name:      e.PeerName,
		})
	}

	self := peer{id: idText, name: n.Name}
	for _, c := range n.Children {
		childPath := path + "/" + c.Name
		childID := ident.NodeID(ingestionID, childPath)
		rows = append(rows, row.Row{
			ID:        id,
			Direction: row.DirectionOut,
			Relation:  row.RelationChild,
			RelatesTo: childID.String(),
			Name:      c.Name,
		})
		rows = append(rows, flattenNode(ingestionID, c, path, &self, edgesByPath)...)
	}

	return rows
}

// tagsOrEmpty normalizes a nil tag list to an empty, non-nil slice so that
// self-rows always carry a materialized (possibly empty) tag list.
func tagsOrEmpty(tags []graphdoc.Tag) []graphdoc.Tag {
	if tags == nil {
		return []graphdoc.Tag{}
	}
	return tags
}
