// Package core provides the HTTP chassis of the Output Management Component.
// It owns the chi router and the cross-cutting concerns (panic recovery,
// request deadlines, correlation IDs, request logging and the JSON error
// envelope) that run before requests reach the event handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omc/internal/config"
)

// RouteRegistrar mounts a group of routes. Handler packages provide them so
// core does not import its callers.
type RouteRegistrar func(r chi.Router)

// Server holds the dependencies of the HTTP surface.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	Validator    *Validator
	HealthProbes []HealthProbe

	// RouteRegistrars are applied by MountRoutes after the global middleware.
	RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer creates a Server with an empty router. Routes are mounted by
// MountRoutes once the caller has appended its registrars.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server-owned resources. The HTTP listener itself is
// drained by the caller's http.Server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
