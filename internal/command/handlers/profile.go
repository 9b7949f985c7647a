// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"

	"github.com/purerosefallen/YuzuDice/internal/command"
)

// NameHandler sets the caller's display name in the current group, or
// globally with -g.
// Usage: name [-g] <name>
func NameHandler(ctx context.Context, exec *command.CommandExecution) error {
	name, global := command.TakeFlag(exec.Args, "-g", "--global")
	if name == "" {
		return command.ErrInvalidArgs("name", "name [-g] <name>")
	}
	msg, err := exec.Services.Bot.SetName(ctx, exec.Actor, name, global)
	return reply(ctx, exec, "name", msg, err)
}

// ProfileHandler shows the caller's profile or the profiles matching a
// user id or name.
// Usage: profile [-g] [user]
func ProfileHandler(ctx context.Context, exec *command.CommandExecution) error {
	field, global := command.TakeFlag(exec.Args, "-g", "--global")
	msg, err := exec.Services.Bot.ShowProfile(ctx, exec.Actor, field, global)
	return reply(ctx, exec, "profile", msg, err)
}
