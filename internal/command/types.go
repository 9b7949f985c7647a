// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package command provides the command registry, parser, and dispatch system
// that turns chat lines into bot operations.
package command

import (
	"context"
	"io"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

// CommandHandler is the function signature for command handlers.
//
//nolint:revive // stutter kept for readability at call sites
type CommandHandler func(ctx context.Context, exec *CommandExecution) error

// CommandEntry represents a registered command.
//
//nolint:revive // stutter kept for readability at call sites
type CommandEntry struct {
	Name    string         // canonical name (e.g., "roll")
	Aliases []string       // alternative names (e.g., "r")
	Handler CommandHandler // Go handler
	Help    string         // short description (one line)
	Usage   string         // usage pattern (e.g., "roll [NdM] [reason]")
	Source  string         // "core" or the name of an extension
}

// CommandExecution provides context for command execution.
//
//nolint:revive // stutter kept for readability at call sites
type CommandExecution struct {
	Actor     identity.Actor
	Args      string
	InvokedAs string
	Output    io.Writer
	Services  *Services

	// LeaveGroupID is set by handlers that ask the transport to leave a group.
	LeaveGroupID string
}

// Services provides access to the bot for command handlers.
// Handlers MUST NOT store references to services beyond execution.
type Services struct {
	Bot      *bot.Service
	Registry *Registry
}
