package main

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jw6ventures/callhistory/internal/logging"
	"github.com/jw6ventures/callhistory/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if cfg.DB.DSN == "" {
			return errors.New("migrate needs APP_DB_DSN or the APP_DB_* settings")
		}

		ctx := logging.WithLogger(cmd.Context(), logger)
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("create db pool: %w", err)
		}
		defer pool.Close()

		applied, err := store.ApplyMigrations(ctx, pool)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations complete", zap.Int("applied", len(applied)))
		return nil
	},
}
