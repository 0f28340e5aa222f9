package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/server/dto"
	"github.com/soundprediction/graphsvc/pkg/storage"
)

// NodeReader is the subset of *storage.Gateway the node handler depends on.
type NodeReader interface {
	GetNode(ctx context.Context, id uuid.UUID, includeTags, includeRelations bool) (*storage.Node, error)
}

// NodeHandler serves GET /nodes/{id}.
type NodeHandler struct {
	gw NodeReader
}

// NewNodeHandler creates a new node handler.
func NewNodeHandler(gw NodeReader) *NodeHandler {
	return &NodeHandler{gw: gw}
}

// boolQueryParam parses a query parameter as a bool, defaulting to
// defaultValue when absent or unparseable.
func boolQueryParam(r *http.Request, name string, defaultValue bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// GetNode handles GET /nodes/{id}?tags=bool&relations=bool.
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "invalid_id", err.Error())
		return
	}

	includeTags := boolQueryParam(r, "tags", true)
	includeRelations := boolQueryParam(r, "relations", true)

	node, err := h.gw.GetNode(r.Context(), id, includeTags, includeRelations)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "transport_error", err.Error())
		return
	}
	if node == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toNodeDTO(node))
}

func toNodeDTO(n *storage.Node) dto.Node {
	tags := make([]dto.Tag, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = dto.Tag{t.Kind, t.Value}
	}

	relations := make([]dto.NodeRelation, len(n.Relations))
	for i, rel := range n.Relations {
		relations[i] = dto.NodeRelation{
			Type:       rel.Type,
			Outbound:   rel.Outbound,
			TargetName: rel.TargetName,
			RelatesTo:  rel.RelatesTo,
		}
	}

	return dto.Node{
		UUID:        n.UUID.String(),
		IngestionID: n.IngestionID,
		Name:        n.Name,
		Path:        n.Path,
		Type:        n.Type,
		Tags:        tags,
		Relations:   relations,
	}
}
