package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/soundprediction/graphsvc/pkg/server/dto"
)

// Ingestor is the subset of *ingest.Orchestrator the handler depends on.
type Ingestor interface {
	Ingest(ctx context.Context, ingestionID string, files []string) error
}

// IngestHandler serves POST /ingest.
type IngestHandler struct {
	orchestrator Ingestor
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(o Ingestor) *IngestHandler {
	return &IngestHandler{orchestrator: o}
}

func writeErrorJSON(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// Ingest handles POST /ingest. Per spec §4.5/§7, the request succeeds once
// every file task has terminated regardless of individual file outcomes;
// only a request-level failure (bad JSON, missing fields) returns an error.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.orchestrator.Ingest(r.Context(), req.IngestionID, req.Files); err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestResponse{Status: "OK"})
}
