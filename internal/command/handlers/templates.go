// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/purerosefallen/YuzuDice/internal/command"
)

const templateUsage = "template get|set|clear|list [-g] [key] [content]"

// TemplateHandler administers response templates. Without -g it acts on
// the current group; with -g on the global overrides.
// Usage: template get [-g] <key> | set [-g] <key> <content> | clear [-g] <key> | list [-g]
func TemplateHandler(ctx context.Context, exec *command.CommandExecution) error {
	sub, rest := command.SplitFirst(exec.Args)
	rest, global := command.TakeFlag(rest, "-g", "--global")
	key, content := command.SplitFirst(rest)
	b := exec.Services.Bot

	var (
		msg string
		err error
	)
	switch strings.ToLower(sub) {
	case "get":
		if key == "" {
			return command.ErrInvalidArgs("template", templateUsage)
		}
		msg, err = b.GetTemplate(ctx, exec.Actor, key, global)
	case "list":
		msg, err = b.ListTemplates(ctx, exec.Actor, global)
	case "set":
		if key == "" || content == "" {
			return command.ErrInvalidArgs("template", templateUsage)
		}
		msg, err = b.SetTemplate(ctx, exec.Actor, key, content, global)
	case "clear":
		if key == "" {
			return command.ErrInvalidArgs("template", templateUsage)
		}
		msg, err = b.ClearTemplate(ctx, exec.Actor, key, global)
	default:
		return command.ErrInvalidArgs("template", templateUsage)
	}
	return reply(ctx, exec, "template", msg, err)
}
