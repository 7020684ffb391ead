// Package db provides database connection handling for Playshare.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// Pool sizing defaults. The analytics endpoints fan out into many aggregate
// queries per request, so the pool is kept comfortably above the expected
// request concurrency.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 30 * time.Minute
	pingTimeout            = 5 * time.Second
)

// Open opens a Postgres connection pool and verifies connectivity with a ping.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pool.SetMaxOpenConns(DefaultMaxOpenConns)
	pool.SetMaxIdleConns(DefaultMaxIdleConns)
	pool.SetConnMaxLifetime(DefaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
