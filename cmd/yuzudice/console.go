// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/purerosefallen/YuzuDice/internal/store"
)

// NewConsoleCmd creates the console subcommand.
func NewConsoleCmd(deps *Deps) *cobra.Command {
	opts := consoleOptions{}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot from the terminal",
		Long: `Reads chat lines from standard input and answers on standard output,
as if they were sent from a chat group. Lines starting with "/" are console
events; type /help for the list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd, deps, opts)
		},
	}

	addConsoleFlags(cmd, &opts)
	return cmd
}

func addConsoleFlags(cmd *cobra.Command, opts *consoleOptions) {
	cmd.Flags().StringVar(&opts.userID, "user-id", "console", "user ID to speak as")
	cmd.Flags().StringVar(&opts.username, "username", "", "display name sent with each line")
	cmd.Flags().StringVar(&opts.groupID, "group-id", "", "group to speak in (empty: private chat)")
	cmd.Flags().BoolVar(&opts.groupAdmin, "group-admin", false, "treat the user as an administrator of --group-id")
}

func runConsole(cmd *cobra.Command, deps *Deps, opts consoleOptions) error {
	if opts.userID == "" {
		return oops.Code("CONFIG_INVALID").Errorf("--user-id must not be empty")
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

	ctx := cmd.Context()
	backend, err := deps.BackendFactory(ctx, databaseURL, store.ConnectOptions{
		Retries: cfg.Database.ConnectRetries,
		Backoff: cfg.Database.ConnectBackoff,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer backend.Close()

	session, cleanup, err := buildConsole(cfg, backend.Repositories(), opts, nil, nil, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.InfoContext(ctx, "console ready", "user_id", opts.userID, "group_id", opts.groupID)
	return session.Run(ctx, deps.Stdin, cmd.OutOrStdout()) //nolint:wrapcheck // already coded by console
}
