// Package main is the HTTP entry point of the Output Management Component.
//
// It loads configuration, wires the processing pipeline (query adapters,
// scenario resolver, Notify dispatcher, optional retry queue), mounts the
// events endpoints on the core chassis and serves until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omc/internal/api/handlers"
	"omc/internal/app"
	"omc/internal/config"
	"omc/internal/core"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	cfg, err := config.LoadConfig(config.NewSecretsManagerProvider(region, os.Getenv("AWS_ENDPOINT_URL")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewSlog(cfg.LogLevel)
	logger.Info("OMC API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"test_mode", cfg.IsTestMode,
	)

	components, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("wiring pipeline: %w", err)
	}
	logger.Info("versions register", "versions", components.Register.ReportVersions())

	srv, err := buildServer(cfg, components, logger)
	if err != nil {
		return err
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildServer mounts the events routes and health probes on a new server.
func buildServer(cfg *config.Config, components *app.Components, logger *slog.Logger) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = components.HealthProbes()

	events := handlers.NewEventsHandler(
		components.Processor,
		components.Register,
		srv.Validator,
		app.NewLogger(logger).With("component", "events"),
	)
	srv.RouteRegistrars = append(srv.RouteRegistrars, events.RegisterRoutes)

	srv.MountRoutes()
	return srv, nil
}

// runHTTPServer serves until a shutdown signal arrives, then drains within
// the configured shutdown timeout.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}
