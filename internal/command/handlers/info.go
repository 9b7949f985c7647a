// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/purerosefallen/YuzuDice/internal/command"
)

// PermsHandler lists permission names, optionally filtered by a glob.
// Usage: perms [pattern]
func PermsHandler(ctx context.Context, exec *command.CommandExecution) error {
	pattern, _ := command.SplitFirst(exec.Args)
	names, err := exec.Services.Bot.ListPermissions(pattern)
	if err != nil {
		return command.ErrInvalidArgs("perms", "perms [pattern]")
	}
	if len(names) == 0 {
		writeOutput(ctx, exec, "perms", "No permission matches "+pattern+".")
		return nil
	}
	writeOutput(ctx, exec, "perms", strings.Join(names, "\n"))
	return nil
}

// KeysHandler lists every template key.
// Usage: keys
func KeysHandler(ctx context.Context, exec *command.CommandExecution) error {
	writeOutput(ctx, exec, "keys", strings.Join(exec.Services.Bot.TemplateKeys(), "\n"))
	return nil
}

// HelpHandler lists commands, or shows the usage of one.
// Usage: help [command]
func HelpHandler(ctx context.Context, exec *command.CommandExecution) error {
	name, _ := command.SplitFirst(exec.Args)
	reg := exec.Services.Registry
	if reg == nil {
		writeOutput(ctx, exec, "help", "No help available.")
		return nil
	}

	if name != "" {
		entry, ok := reg.Get(strings.ToLower(name))
		if !ok {
			return command.ErrUnknownCommand(name)
		}
		text := fmt.Sprintf("%s - %s\nUsage: %s", entry.Name, entry.Help, entry.Usage)
		if len(entry.Aliases) > 0 {
			text += "\nAliases: " + strings.Join(entry.Aliases, ", ")
		}
		writeOutput(ctx, exec, "help", text)
		return nil
	}

	lines := make([]string, 0, len(reg.All()))
	for _, entry := range reg.All() {
		lines = append(lines, fmt.Sprintf("%-10s %s", entry.Name, entry.Help))
	}
	writeOutput(ctx, exec, "help", strings.Join(lines, "\n"))
	return nil
}
