// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/command/handlers"
	"github.com/purerosefallen/YuzuDice/internal/config"
	"github.com/purerosefallen/YuzuDice/internal/console"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/observability"
)

// consoleOptions is how the operator first appears in the console.
type consoleOptions struct {
	userID     string
	username   string
	groupID    string
	groupAdmin bool
}

// buildConsole wires the bot, command registry, dispatcher, and console
// session. reg and metrics may be nil when nothing is served. The returned
// cleanup stops the rate limiter.
func buildConsole(cfg config.Config, repos bot.Repositories, opts consoleOptions, reg prometheus.Registerer, metrics *observability.Metrics, logger *slog.Logger) (*console.Session, func(), error) {
	roles := console.NewRoles()
	if opts.groupAdmin && opts.groupID != "" {
		roles.Set(opts.groupID, opts.userID, true)
	}

	svc, err := bot.New(cfg.BotConfig(), repos,
		bot.WithRoleChecker(roles),
		bot.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // already coded by bot
	}

	registry := command.NewRegistry()
	handlers.RegisterAll(registry)

	dispatchOpts := []command.DispatcherOption{command.WithPrefixes(cfg.Bot.Prefix)}
	cleanup := func() {}
	if rlCfg, ok := cfg.RateLimiterConfig(); ok {
		rl := command.NewRateLimiter(rlCfg, reg)
		dispatchOpts = append(dispatchOpts, command.WithRateLimiter(rl))
		cleanup = rl.Close
	}

	dispatcher, err := command.NewDispatcher(registry, dispatchOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err //nolint:wrapcheck // sentinel
	}

	sessionOpts := []console.Option{console.WithLogger(logger)}
	if metrics != nil {
		sessionOpts = append(sessionOpts, console.WithMetrics(metrics))
	}
	session := console.New(dispatcher,
		&command.Services{Bot: svc, Registry: registry},
		roles,
		identity.Actor{UserID: opts.userID, Username: opts.username, GroupID: opts.groupID},
		sessionOpts...)
	return session, cleanup, nil
}
