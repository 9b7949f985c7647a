// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"context"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/httpapi"
	"github.com/purerosefallen/YuzuDice/internal/observability"
	"github.com/purerosefallen/YuzuDice/internal/store"
)

// Deps contains injectable dependencies for the subcommands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// BackendFactory connects to the database.
	// Default: store.Open wrapped in a pgBackend
	BackendFactory func(ctx context.Context, databaseURL string, opts store.ConnectOptions) (Backend, error)

	// MigratorFactory opens a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory creates the admin API server.
	// Default: httpapi.NewServer
	APIServerFactory func(addr string, h *httpapi.Handler) APIServer

	// Stdin is read by the console transport.
	// Default: os.Stdin
	Stdin io.Reader
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.BackendFactory == nil {
		out.BackendFactory = openPostgres
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.APIServerFactory == nil {
		out.APIServerFactory = func(addr string, h *httpapi.Handler) APIServer {
			return httpapi.NewServer(addr, h)
		}
	}
	if out.Stdin == nil {
		out.Stdin = os.Stdin
	}
	return out
}

// Backend is a connected store.
type Backend interface {
	Repositories() bot.Repositories
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Status() (store.MigrationStatus, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
	Register(fns ...func(prometheus.Registerer))
	Registerer() prometheus.Registerer
}

// APIServer wraps the methods used from httpapi.Server.
type APIServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// pgBackend serves the repositories from one pgx pool.
type pgBackend struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, databaseURL string, opts store.ConnectOptions) (Backend, error) {
	pool, err := store.Open(ctx, databaseURL, opts)
	if err != nil {
		return nil, err //nolint:wrapcheck // already coded by store
	}
	return &pgBackend{pool: pool}, nil
}

func (b *pgBackend) Repositories() bot.Repositories {
	return bot.Repositories{
		Users:     store.NewUserRepository(b.pool),
		Groups:    store.NewGroupRepository(b.pool),
		Profiles:  store.NewProfileRepository(b.pool),
		Templates: store.NewTemplateRepository(b.pool),
	}
}

func (b *pgBackend) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

func (b *pgBackend) Close() { b.pool.Close() }
