// Package server exposes the retrieval engine over HTTP, for editor and
// assistant integrations that prefer a local service to shelling out.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tomehq/tome/internal/engine"
)

// Config carries the listener knobs.
type Config struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server wraps the chi router and the http.Server around one engine.
type Server struct {
	engine *engine.Engine
	log    *zap.SugaredLogger
	http   *http.Server
}

// New wires the middleware chain and routes. ctx bounds the lifetime of
// background middleware state, such as the rate limiter sweep.
func New(ctx context.Context, eng *engine.Engine, log *zap.SugaredLogger, cfg Config) *Server {
	s := &Server{engine: eng, log: log}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests(log))
	r.Use(recoverPanics(log))
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		r.Use(rateLimit(ctx, cfg.RateLimitRPS, burst))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(api chi.Router) {
		api.Get("/query", s.handleQuery)
		api.Get("/entries", s.handleEntries)
		// Wildcard, not {id}: entry ids may contain slashes.
		api.Get("/entries/*", s.handleEntry)
		api.Get("/validate", s.handleValidate)
		api.Get("/stats", s.handleStats)
		api.Post("/refresh", s.handleRefresh)
	})

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks until ctx is cancelled or the listener fails,
// then drains in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Infow("http server draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
