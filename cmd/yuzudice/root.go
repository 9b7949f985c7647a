// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/purerosefallen/YuzuDice/internal/config"
	"github.com/purerosefallen/YuzuDice/internal/logging"
	"github.com/purerosefallen/YuzuDice/internal/xdg"
)

const serviceName = "yuzudice"

// NewRootCmd creates the root command for the YuzuDice CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "yuzudice",
		Short: "YuzuDice - a dice and moderation bot for group chats",
		Long: `YuzuDice rolls dice, runs risk checks, and manages per-group
profiles, welcome messages, and response templates.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (YAML, default $XDG_CONFIG_HOME/yuzudice/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewConsoleCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewSeedCmd(deps))
	cmd.AddCommand(NewHashTokenCmd(deps))

	return cmd
}

// loadConfig reads the file named by --config (or the XDG config file when
// one exists), the changed flags, and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if path == "" {
		found, ok, err := xdg.FindConfigFile()
		if err != nil {
			return config.Config{}, err //nolint:wrapcheck // already coded by xdg
		}
		if ok {
			path = found
		}
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, err //nolint:wrapcheck // already coded by config
	}
	return cfg, nil
}

// setupLogging installs the process logger, writing to the command's
// error stream.
func setupLogging(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	// Validate has already rejected unknown levels.
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.SetupWithLevel(serviceName, version, cfg.Log.Format, level, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return logger
}

func requireDatabaseURL(cfg config.Config) (string, error) {
	if cfg.Secrets.DatabaseURL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}
	return cfg.Secrets.DatabaseURL, nil
}
