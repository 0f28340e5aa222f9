package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soundprediction/graphsvc/pkg/traversal"
)

type fakeTraverser struct {
	node *traversal.Node
	err  error
}

func (f *fakeTraverser) Traverse(ctx context.Context, seed uuid.UUID, direction traversal.Direction, relationKind string, maxDepth int) (*traversal.Node, error) {
	return f.node, f.err
}

func newTraversalRequest(id, query string) *http.Request {
	target := "/traversal/" + id
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTraverseFound(t *testing.T) {
	id := uuid.New()
	engine := &fakeTraverser{node: &traversal.Node{UUID: id, Name: "root", Type: "K"}}
	handler := NewTraversalHandler(engine)

	w := httptest.NewRecorder()
	handler.Traverse(w, newTraversalRequest(id.String(), "direction=out&max_depth=2"))

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Result().StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(w.Result().Body).Decode(&body)
	if body["uuid"] != id.String() {
		t.Errorf("expected uuid %q, got %v", id.String(), body["uuid"])
	}
}

func TestTraverseMissingSeed(t *testing.T) {
	handler := NewTraversalHandler(&fakeTraverser{node: nil})

	w := httptest.NewRecorder()
	handler.Traverse(w, newTraversalRequest(uuid.New().String(), "direction=out"))

	if w.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Result().StatusCode)
	}
}

func TestTraverseInvalidDirection(t *testing.T) {
	handler := NewTraversalHandler(&fakeTraverser{})

	w := httptest.NewRecorder()
	handler.Traverse(w, newTraversalRequest(uuid.New().String(), "direction=sideways"))

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Result().StatusCode)
	}
}

func TestTraverseInvalidRelationType(t *testing.T) {
	handler := NewTraversalHandler(&fakeTraverser{})

	w := httptest.NewRecorder()
	handler.Traverse(w, newTraversalRequest(uuid.New().String(), "direction=out&relation_type=friend"))

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Result().StatusCode)
	}
}

func TestTraverseInvalidMaxDepth(t *testing.T) {
	handler := NewTraversalHandler(&fakeTraverser{})

	w := httptest.NewRecorder()
	handler.Traverse(w, newTraversalRequest(uuid.New().String(), "direction=out&max_depth=-1"))

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Result().StatusCode)
	}
}
