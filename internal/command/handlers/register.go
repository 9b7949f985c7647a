// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"github.com/purerosefallen/YuzuDice/internal/command"
)

// RegisterAll registers all core command handlers with the registry.
// Panics if any registration fails (indicates a programming error).
func RegisterAll(reg *command.Registry) {
	mustRegister := func(entry command.CommandEntry) {
		entry.Source = "core"
		if err := reg.Register(entry); err != nil {
			panic("failed to register core command " + entry.Name + ": " + err.Error())
		}
	}

	// Dice
	mustRegister(command.CommandEntry{
		Name:    "roll",
		Aliases: []string{"r"},
		Handler: RollHandler,
		Help:    "Roll dice",
		Usage:   rollUsage,
	})
	mustRegister(command.CommandEntry{
		Name:    "rc",
		Aliases: []string{"check"},
		Handler: CheckHandler,
		Help:    "Roll a percentile check against a threshold",
		Usage:   checkUsage,
	})

	// Identity
	mustRegister(command.CommandEntry{
		Name:    "name",
		Aliases: []string{"nn"},
		Handler: NameHandler,
		Help:    "Set your display name in this group, or globally with -g",
		Usage:   "name [-g] <name>",
	})
	mustRegister(command.CommandEntry{
		Name:    "profile",
		Aliases: []string{"whois"},
		Handler: ProfileHandler,
		Help:    "Show your profile or another user's",
		Usage:   "profile [-g] [user]",
	})

	// Group administration
	mustRegister(command.CommandEntry{
		Name:    "welcome",
		Handler: WelcomeHandler,
		Help:    "Show or change this group's welcome message",
		Usage:   welcomeUsage,
	})
	mustRegister(command.CommandEntry{
		Name:    "allow",
		Handler: AllowHandler,
		Help:    "Set whether the bot accepts invitations into a group",
		Usage:   allowUsage,
	})
	mustRegister(command.CommandEntry{
		Name:    "leave",
		Aliases: []string{"dismiss"},
		Handler: LeaveHandler,
		Help:    "Ask the bot to leave a group",
		Usage:   "leave [group]",
	})
	mustRegister(command.CommandEntry{
		Name:    "template",
		Aliases: []string{"tpl"},
		Handler: TemplateHandler,
		Help:    "View or change response templates",
		Usage:   templateUsage,
	})

	// Reference
	mustRegister(command.CommandEntry{
		Name:    "perms",
		Handler: PermsHandler,
		Help:    "List permission names",
		Usage:   "perms [pattern]",
	})
	mustRegister(command.CommandEntry{
		Name:    "keys",
		Handler: KeysHandler,
		Help:    "List template keys",
		Usage:   "keys",
	})
	mustRegister(command.CommandEntry{
		Name:    "help",
		Handler: HelpHandler,
		Help:    "List commands or show how to use one",
		Usage:   "help [command]",
	})
}
