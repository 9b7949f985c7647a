// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/observability"
)

// logOutputError logs a write failure and counts it. The command itself
// still succeeds.
func logOutputError(ctx context.Context, cmd, userID string, bytesWritten int, err error) {
	slog.WarnContext(ctx, "failed to write command output",
		"command", cmd,
		"user_id", userID,
		"bytes_written", bytesWritten,
		"error", err,
	)
	observability.RecordCommandOutputFailure(cmd)
}

// writeOutput writes one reply to the command output.
func writeOutput(ctx context.Context, exec *command.CommandExecution, cmd, msg string) {
	if n, err := fmt.Fprintln(exec.Output, msg); err != nil {
		logOutputError(ctx, cmd, exec.Actor.UserID, n, err)
	}
}

// reply writes the result of a bot operation, or returns its error.
func reply(ctx context.Context, exec *command.CommandExecution, cmd, msg string, err error) error {
	if err != nil {
		return err
	}
	writeOutput(ctx, exec, cmd, msg)
	return nil
}
