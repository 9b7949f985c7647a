// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/purerosefallen/YuzuDice/internal/seed"
	"github.com/purerosefallen/YuzuDice/internal/store"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout      time.Duration
	validateOnly bool
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd(deps *Deps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load templates, group settings, and administrators from a YAML file",
		Long: `Applies a seed file to the database: group join policies and welcome
messages, global and group template overrides, and administrator permissions.
This command is idempotent - records that already match are left alone, and
permissions are only ever added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0], deps, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().BoolVar(&cfg.validateOnly, "validate-only", false, "check the file and exit without touching the database")

	return cmd
}

func runSeed(cmd *cobra.Command, path string, deps *Deps, sc *seedConfig) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	file, err := seed.Parse(data, nil)
	if err != nil {
		return oops.With("path", path).Wrap(err)
	}
	if sc.validateOnly {
		cmd.Printf("%s is valid: %d templates, %d groups, %d admins\n",
			path, len(file.Templates), len(file.Groups), len(file.Admins))
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cmd, cfg)
	databaseURL, err := requireDatabaseURL(cfg)
	if err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	backend, err := deps.BackendFactory(ctx, databaseURL, store.ConnectOptions{
		Retries: cfg.Database.ConnectRetries,
		Backoff: cfg.Database.ConnectBackoff,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer backend.Close()

	repos := backend.Repositories()
	report, err := seed.Apply(ctx, file, seed.Targets{
		Users:     repos.Users,
		Groups:    repos.Groups,
		Templates: template.NewManager(repos.Templates, nil),
		Logger:    logger,
	})
	if err != nil {
		return oops.Code("SEED_FAILED").With("path", path).Wrap(err)
	}

	cmd.Printf("Seed applied: %d templates set, %d groups updated, %d users updated, %d unchanged\n",
		report.TemplatesSet, report.GroupsUpdated, report.UsersUpdated, report.Unchanged)
	return nil
}
