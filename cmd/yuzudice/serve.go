// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/httpapi"
	"github.com/purerosefallen/YuzuDice/internal/store"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

const (
	shutdownTimeout  = 5 * time.Second
	readinessTimeout = 2 * time.Second
)

// serveOptions holds flags local to serve.
type serveOptions struct {
	autoMigrate bool
	console     bool
	consoleOptions
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API and the metrics server",
		Long: `Serves the administrative HTTP API on http.addr and Prometheus metrics
plus health probes on metrics.addr until interrupted.

With --console the terminal transport runs in the same process, and
the process exits when the console input ends.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, deps, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", false, "apply pending migrations before serving")
	cmd.Flags().BoolVar(&opts.console, "console", false, "also run the console transport on stdin")
	addConsoleFlags(cmd, &opts.consoleOptions)

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps, opts serveOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cmd, cfg)

	databaseURL, err := requireDatabaseURL(cfg)
	if err != nil {
		return err
	}

	if opts.autoMigrate {
		if err := migrateUp(deps, databaseURL); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migrations applied")
	}

	backend, err := deps.BackendFactory(ctx, databaseURL, store.ConnectOptions{
		Retries: cfg.Database.ConnectRetries,
		Backoff: cfg.Database.ConnectBackoff,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer backend.Close()
	repos := backend.Repositories()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obsServer := deps.ObservabilityServerFactory(cfg.Metrics.Addr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer pingCancel()
		return backend.Ping(pingCtx) == nil
	})
	obsServer.Register(template.RegisterMetrics, bot.RegisterMetrics, command.RegisterMetrics)

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, obsErrCh, "observability")

	apiOpts := []httpapi.Option{
		httpapi.WithAdminToken(cfg.Secrets.AdminToken),
		httpapi.WithMetrics(obsServer.Metrics()),
		httpapi.WithLogger(logger),
	}
	if cfg.Secrets.AdminToken == "" {
		logger.WarnContext(ctx, "YUZUDICE_ADMIN_TOKEN is not set; the admin API accepts every request")
	}
	apiServer := deps.APIServerFactory(cfg.HTTP.Addr, httpapi.New(repos.Users, apiOpts...))
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServer(obsServer, "observability")
		return oops.Code("HTTP_START_FAILED").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "admin-api")

	logger.InfoContext(ctx, "yuzudice ready",
		"http_addr", apiServer.Addr(),
		"metrics_addr", obsServer.Addr())

	consoleErr := make(chan error, 1)
	if opts.console {
		session, cleanup, err := buildConsole(cfg, repos, opts.consoleOptions,
			obsServer.Registerer(), obsServer.Metrics(), logger)
		if err != nil {
			stopServer(apiServer, "admin-api")
			stopServer(obsServer, "observability")
			return err
		}
		defer cleanup()
		go func() {
			consoleErr <- session.Run(ctx, deps.Stdin, cmd.OutOrStdout())
			cancel()
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down...")

	stopServer(apiServer, "admin-api")
	stopServer(obsServer, "observability")

	select {
	case err := <-consoleErr:
		if err != nil {
			return err //nolint:wrapcheck // already coded by console
		}
	default:
	}

	slog.Info("shutdown complete")
	return nil
}

type stoppable interface {
	Stop(ctx context.Context) error
}

func stopServer(s stoppable, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// This ensures that server failures trigger graceful shutdown of the entire process.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
