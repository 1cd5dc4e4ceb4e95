package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/api"
	"github.com/AntonStoeckl/dynamic-member-search-go/internal/observability"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the member search HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, logger := opts.Config, opts.Logger

	providers, err := observability.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("failed to set up opentelemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("opentelemetry shutdown failed", "error", err.Error())
		}
	}()

	s, err := openStore(ctx, cfg, logger, providers)
	if err != nil {
		return err
	}
	defer s.Close()

	var handler http.Handler = api.NewHandler(api.Config{
		Searcher:         s.searcher,
		CountingSearcher: s.countingSearcher,
		HealthCheck:      s.healthCheck,
		Logger:           logger,
		DefaultPageLimit: cfg.Search.DefaultPageLimit,
		MaxPageLimit:     cfg.Search.MaxPageLimit,
		RequestTimeout:   cfg.Server.RequestTimeout,
	})

	if cfg.Search.ReadFromReplica {
		handler = eventuallyConsistent(handler)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("membersearch api listening",
			"addr", server.Addr,
			"driver", cfg.DB.Driver,
			"count_strategy", cfg.Search.CountStrategy,
			"filter_strategy", cfg.Search.FilterStrategy,
			"otel_enabled", providers.Enabled(),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining connections")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("membersearch api stopped")

	return nil
}

// eventuallyConsistent routes every request to the replica, if the store has one.
func eventuallyConsistent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(membersearch.WithEventualConsistency(r.Context())))
	})
}
