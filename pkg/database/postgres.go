// Package database wraps the pgx connection pool behind a small handle
// shared by the repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing matches the workload: the directory serves most reads
// from the cache, so a handful of connections covers the cache misses
// and the owner-side writes.
const (
	poolMaxConns        = 8
	poolMinConns        = 1
	poolMaxConnLifetime = 30 * time.Minute
	poolMaxConnIdleTime = 10 * time.Minute
	poolHealthInterval  = 30 * time.Second
	connectTimeout      = 5 * time.Second
)

// PostgresDB holds the shared connection pool.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB opens a connection pool and verifies it with a ping, so
// a bad DATABASE_URL fails at startup rather than on the first query.
func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = poolMaxConns
	config.MinConns = poolMinConns
	config.MaxConnLifetime = poolMaxConnLifetime
	config.MaxConnIdleTime = poolMaxConnIdleTime
	config.HealthCheckPeriod = poolHealthInterval
	config.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// Close releases the pool. Safe on a nil handle from a failed startup.
func (db *PostgresDB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Health pings the database for the readiness endpoint.
func (db *PostgresDB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
