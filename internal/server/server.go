// Package server exposes the composition pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build version
//	POST /api/compose   JSON request in, image/jpeg out
//	GET  /api/ledger    usage ledger records as JSON
//
// Unresolvable identifiers do not fail a composition; they are listed in the
// X-Missing-Identifiers response header.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/promocanvas/pkg/ledger"
	"github.com/matzehuels/promocanvas/pkg/pipeline"
)

// Timeouts for the HTTP server. Compositions fetch up to three images with
// retries, so the write timeout is generous.
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
	maxRequestBody  = 64 << 10
)

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	ledger   *ledger.Ledger
	logger   *log.Logger
	defaults pipeline.Options
}

// Config wires a Server.
type Config struct {
	Runner *pipeline.Runner

	// Ledger is optional; without it recording is rejected and
	// /api/ledger reports a configuration error.
	Ledger *ledger.Ledger

	// Defaults supplies canvas settings for requests that omit them.
	Defaults pipeline.Options

	Logger *log.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, cfg.Logger)
	}
	return &Server{
		runner:   cfg.Runner,
		ledger:   cfg.Ledger,
		logger:   cfg.Logger,
		defaults: cfg.Defaults,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/compose", s.handleCompose)
		r.Get("/ledger", s.handleLedger)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
