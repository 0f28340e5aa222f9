package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/server/dto"
	"github.com/soundprediction/graphsvc/pkg/traversal"
)

// Traverser is the subset of *traversal.Engine the handler depends on.
type Traverser interface {
	Traverse(ctx context.Context, seed uuid.UUID, direction traversal.Direction, relationKind string, maxDepth int) (*traversal.Node, error)
}

// TraversalHandler serves GET /traversal/{id}.
type TraversalHandler struct {
	engine Traverser
}

// NewTraversalHandler creates a new traversal handler.
func NewTraversalHandler(engine Traverser) *TraversalHandler {
	return &TraversalHandler{engine: engine}
}

// Traverse handles GET /traversal/{id}?direction=in|out&relation_type=parent|child&max_depth=int.
func (h *TraversalHandler) Traverse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "invalid_id", err.Error())
		return
	}

	direction, err := traversal.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "invalid_direction", err.Error())
		return
	}

	relationKind, err := traversal.ParseRelationKind(r.URL.Query().Get("relation_type"))
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "invalid_relation_type", err.Error())
		return
	}

	maxDepth := 0
	if raw := r.URL.Query().Get("max_depth"); raw != "" {
		maxDepth, err = strconv.Atoi(raw)
		if err != nil || maxDepth < 0 {
			writeErrorJSON(w, http.StatusInternalServerError, "invalid_max_depth", "max_depth must be a non-negative integer")
			return
		}
	}

	node, err := h.engine.Traverse(r.Context(), id, direction, relationKind, maxDepth)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "transport_error", err.Error())
		return
	}
	if node == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toTraversalDTO(node))
}

func toTraversalDTO(n *traversal.Node) dto.TraversalNode {
	children := make([]dto.TraversalNode, len(n.Relations))
	for i, c := range n.Relations {
		children[i] = toTraversalDTO(c)
	}

	relationIDs := n.RelationIDs
	if relationIDs == nil {
		relationIDs = []string{}
	}

	return dto.TraversalNode{
		UUID:        n.UUID.String(),
		Depth:       n.Depth,
		Name:        n.Name,
		Type:        n.Type,
		Relations:   children,
		RelationIDs: relationIDs,
	}
}
