package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/jw6ventures/callhistory/internal/logging"
	"github.com/jw6ventures/callhistory/internal/migrations"
)

// PgxPool represents the subset of pgxpool.Pool used by migration helpers.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

const recordMigrationSQL = `INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`

// ApplyMigrations runs every embedded migration that schema_migrations does
// not list yet, each in its own transaction, and returns the names it ran.
// A database that already holds the calls table but no schema_migrations is
// assumed to carry the initial schema.
func ApplyMigrations(ctx context.Context, pool PgxPool) ([]string, error) {
	names, err := migrationFiles(migrations.Files)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	log := logging.FromContext(ctx)

	tracked, err := queryBool(ctx, pool, "check migration table", `SELECT EXISTS (
        SELECT 1 FROM information_schema.tables
        WHERE table_schema='public' AND table_name='schema_migrations'
)`)
	if err != nil {
		return nil, err
	}
	if !tracked {
		if err := adoptSchema(ctx, pool, names[0]); err != nil {
			return nil, err
		}
	}

	var applied []string
	for _, name := range names {
		done, err := queryBool(ctx, pool, "check migration "+name,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version=$1)`, name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := runMigration(ctx, pool, name); err != nil {
			return applied, err
		}
		log.Info("applied migration", zap.String("version", name))
		applied = append(applied, name)
	}
	return applied, nil
}

// adoptSchema creates schema_migrations and, when the calls table already
// exists, marks the initial migration as applied.
func adoptSchema(ctx context.Context, pool PgxPool, initial string) error {
	populated, err := queryBool(ctx, pool, "check calls table", `SELECT EXISTS (
        SELECT 1 FROM information_schema.tables
        WHERE table_schema='public' AND table_name='calls'
)`)
	if err != nil {
		return err
	}

	const createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	if populated {
		if _, err := pool.Exec(ctx, recordMigrationSQL, initial); err != nil {
			return fmt.Errorf("record migration %s: %w", initial, err)
		}
	}
	return nil
}

func runMigration(ctx context.Context, pool PgxPool, name string) error {
	defer observeDB(ctx, "db.migrate")()

	contents, err := migrations.Files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, string(contents)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, recordMigrationSQL, name); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func queryBool(ctx context.Context, pool PgxPool, what, q string, args ...any) (bool, error) {
	var v bool
	if err := pool.QueryRow(ctx, q, args...).Scan(&v); err != nil {
		return false, fmt.Errorf("%s: %w", what, err)
	}
	return v, nil
}
