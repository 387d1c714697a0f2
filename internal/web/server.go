// Package web serves datasets, tables, rankings and maps to the chart pages.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fjacquet/cultura-csv/internal/dataset"
	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API.
type Server struct {
	service  *dataset.Service
	sessions *session.Registry
	logger   logging.Logger
	timeout  time.Duration
	router   *chi.Mux

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// NewServer creates a Server. Handlers give up after timeout.
func NewServer(service *dataset.Service, sessions *session.Registry, logger logging.Logger, timeout time.Duration) *Server {
	if sessions == nil {
		sessions = session.NewRegistry()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s := &Server{
		service:  service,
		sessions: sessions,
		logger:   logger,
		timeout:  timeout,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))
	s.router.Use(s.withSession)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/sources", s.handleListSources)
		r.Route("/sources/{name}", func(r chi.Router) {
			r.Get("/", s.handleSource)
			r.Get("/dataset", s.handleDataset)
			r.Get("/table", s.handleTable)
			r.Get("/top", s.handleTop)
			r.Get("/points", s.handlePoints)
			r.Get("/sheet", s.handleSheet)
		})
		r.Get("/choropleth", s.handleChoropleth)

		r.Get("/ramps", s.handleListRamps)
		r.Get("/ramps/{name}", s.handleRamp)
		r.Get("/ramps/{name}/color", s.handleRampColor)

		r.Delete("/session", s.handleEndSession)
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// once Shutdown has been called, even when Shutdown came first.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("Starting server", logging.Field{Key: "addr", Value: addr})
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON and writes it to w.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}

func (s *Server) writeGeoJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}
