// Package store reads call records from PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jw6ventures/callhistory/internal/metrics"
)

// Pool is the subset of pgxpool.Pool the store needs.
type Pool interface {
	PgxPool
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Store serves calls from the calls and call_notes tables. It satisfies
// calls.Source.
type Store struct {
	pool Pool
}

func New(pool Pool) *Store {
	return &Store{pool: pool}
}

// HealthCheck verifies that the underlying database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.healthcheck")()
	return s.pool.Ping(ctx)
}

// observeDB starts a latency measurement for operation; call the returned
// func when the query is done.
func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBLatency(ctx, operation, start) }
}
