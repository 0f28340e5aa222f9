// Package server wires the HTTP surface described in spec §6: a health
// endpoint, the ingestion entry point, and the two graph read endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soundprediction/graphsvc/pkg/config"
	"github.com/soundprediction/graphsvc/pkg/server/handlers"
)

// Server is the HTTP server wrapping the ingestion and graph-read seams.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	health     *handlers.HealthHandler
	ingest     *handlers.IngestHandler
	node       *handlers.NodeHandler
	traversal  *handlers.TraversalHandler
	httpServer *http.Server
}

// New creates a new Server bound to its collaborators. Any of health,
// ingest, node, traversal may be used independently of the others — each
// handler only depends on the narrow interface it needs.
func New(cfg *config.Config, health *handlers.HealthHandler, ingest *handlers.IngestHandler, node *handlers.NodeHandler, traversal *handlers.TraversalHandler) *Server {
	return &Server{
		config:    cfg,
		health:    health,
		ingest:    ingest,
		node:      node,
		traversal: traversal,
	}
}

// Setup wires middleware and routes and constructs the underlying
// http.Server; it must be called before Start.
func (s *Server) Setup() {
	s.router = chi.NewRouter()

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(corsMiddleware)

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthcheck", s.health.HealthCheck)
	s.router.Post("/ingest", s.ingest.Ingest)
	s.router.Get("/nodes/{id}", s.node.GetNode)
	s.router.Get("/traversal/{id}", s.traversal.Traverse)
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("server: starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("server: stopping")
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
