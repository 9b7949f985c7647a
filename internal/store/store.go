// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package store implements the identity and template repositories on
// PostgreSQL and manages the schema with golang-migrate.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// poolIface is the subset of *pgxpool.Pool the repositories use, so tests
// can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ poolIface = (*pgxpool.Pool)(nil)

// ConnectOptions controls how Open waits for the database.
type ConnectOptions struct {
	// Retries is how many pings to retry after the first fails.
	Retries uint64
	// Backoff is the initial delay between pings; it doubles each retry.
	// Defaults to 500ms.
	Backoff time.Duration
}

// Open creates a pool for databaseURL and pings it with exponential
// backoff until it answers or the retries run out.
func Open(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}

	base := opts.Backoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(opts.Retries, retry.NewExponential(base))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("attempts", attempt).Wrap(err)
	}
	return pool, nil
}
