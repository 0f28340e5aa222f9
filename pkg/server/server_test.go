package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soundprediction/graphsvc/pkg/config"
	"github.com/soundprediction/graphsvc/pkg/server/handlers"
)

func newTestServer() *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080},
	}
	s := New(cfg,
		handlers.NewHealthHandler(nil),
		handlers.NewIngestHandler(&noopIngestor{}),
		handlers.NewNodeHandler(&noopNodeReader{}),
		handlers.NewTraversalHandler(&noopTraverser{}),
	)
	s.Setup()
	return s
}

func TestSetupBuildsRouterAndHTTPServer(t *testing.T) {
	s := newTestServer()

	if s.router == nil {
		t.Error("expected router to be initialized")
	}
	if s.httpServer == nil {
		t.Error("expected http.Server to be initialized")
	}
	if s.httpServer.Addr != "localhost:8080" {
		t.Errorf("expected addr localhost:8080, got %s", s.httpServer.Addr)
	}
}

func TestHealthRouteIsWired(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Result().StatusCode)
	}
}

func TestCORSPreflightIsHandled(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/healthcheck", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Result().StatusCode)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header to be set")
	}
}
