// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

const (
	welcomeUsage = "welcome [set <message> | clear]"
	allowUsage   = "allow <allow|deny|default> [group]"
)

// WelcomeHandler shows or changes the group's welcome message.
// Usage: welcome | welcome set <message> | welcome clear
func WelcomeHandler(ctx context.Context, exec *command.CommandExecution) error {
	sub, message := command.SplitFirst(exec.Args)
	b := exec.Services.Bot

	var (
		msg string
		err error
	)
	switch strings.ToLower(sub) {
	case "":
		msg, err = b.ShowWelcome(ctx, exec.Actor)
	case "set":
		if message == "" {
			return command.ErrInvalidArgs("welcome", welcomeUsage)
		}
		msg, err = b.SetWelcome(ctx, exec.Actor, message)
	case "clear":
		msg, err = b.SetWelcome(ctx, exec.Actor, "")
	default:
		return command.ErrInvalidArgs("welcome", welcomeUsage)
	}
	return reply(ctx, exec, "welcome", msg, err)
}

// AllowHandler sets whether the bot accepts invitations into a group.
// Usage: allow <allow|deny|default> [group]
func AllowHandler(ctx context.Context, exec *command.CommandExecution) error {
	value, rest := command.SplitFirst(exec.Args)
	policy, ok := identity.ParseJoinPolicy(value)
	if !ok {
		return command.ErrInvalidArgs("allow", allowUsage)
	}
	groupID, _ := command.SplitFirst(rest)
	msg, err := exec.Services.Bot.SetGroupAllow(ctx, exec.Actor, groupID, policy)
	return reply(ctx, exec, "allow", msg, err)
}

// LeaveHandler asks the bot to leave the current group or the named one.
// The transport performs the leave when LeaveGroupID is set.
// Usage: leave [group]
func LeaveHandler(ctx context.Context, exec *command.CommandExecution) error {
	groupID, _ := command.SplitFirst(exec.Args)
	result, err := exec.Services.Bot.Leave(ctx, exec.Actor, groupID)
	if err != nil {
		return err
	}
	if result.Leave {
		exec.LeaveGroupID = result.GroupID
		slog.InfoContext(ctx, "leave requested",
			"user_id", exec.Actor.UserID,
			"group_id", result.GroupID)
	}
	writeOutput(ctx, exec, "leave", result.Message)
	return nil
}
