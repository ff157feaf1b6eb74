// Package server implements the HTTP server for the review API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/review"
)

// Server wraps an HTTP server with graceful shutdown capabilities.
type Server struct {
	cfg    config.HTTPConfig
	server *http.Server
	logger *loggy.Logger
}

// NewServer creates a new HTTP server serving the review API.
func NewServer(cfg config.HTTPConfig, service review.ReviewService, logger *loggy.Logger) *Server {
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg, service),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until shutdown or error.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l until shutdown
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting HTTP server", "address", l.Addr().String())

	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, waiting up to the configured shutdown timeout.
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.Stop(); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}
