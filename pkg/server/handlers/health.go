package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Pinger is the subset of *storage.Gateway the health handler depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health endpoint described in spec §6.
type HealthHandler struct {
	gw Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gw Pinger) *HealthHandler {
	return &HealthHandler{gw: gw}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HealthCheck handles GET /healthcheck: a liveness probe that also pings
// the storage gateway when one is configured. Per spec §6 the response
// shape is always `{status, db_connected, version}` with no failure case —
// a ping failure is reported via db_connected:false, not a non-200 status.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbConnected := false

	if h.gw != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		dbConnected = h.gw.Ping(ctx) == nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"db_connected": dbConnected,
		"version":      Version,
	})
}
