package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/config"
	"github.com/jw6ventures/callhistory/internal/graphql"
	httpserver "github.com/jw6ventures/callhistory/internal/http"
	"github.com/jw6ventures/callhistory/internal/logging"
	"github.com/jw6ventures/callhistory/internal/session"
	"github.com/jw6ventures/callhistory/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("starting callhistory",
		zap.String("source", cfg.CallsSource),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Duration("fetch_timeout", cfg.FetchTimeout))

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	filters, closeFilters, err := session.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer func() { _ = closeFilters() }()

	handler, closeRouter := httpserver.NewRouter(cfg, source, filters, logger)
	defer closeRouter()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.FetchTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// openSource connects to the configured calls backend.
func openSource(ctx context.Context, cfg *config.Config) (calls.Source, func(), error) {
	switch cfg.CallsSource {
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("create db pool: %w", err)
		}
		return store.New(pool), pool.Close, nil
	default:
		httpClient, err := graphql.NewHTTPClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init api client: %w", err)
		}
		return graphql.NewClient(cfg.API.GraphQLURL, httpClient), func() {}, nil
	}
}
