// Package api is the review server: a read-only HTTP surface over the clip
// ledger and recording catalog, with byte-range clip playback for spot
// checking marks in a browser.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/servecut/servecut/internal/catalog"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/metrics"
)

// ServerConfig wires the review server's collaborators.
type ServerConfig struct {
	Bind      string
	Ledger    *ledger.Store
	Catalog   *catalog.Service
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	StartTime time.Time
}

// Server is the review HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the server with its routes mounted.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Bind,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("review server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
