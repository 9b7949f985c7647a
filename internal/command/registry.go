// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry manages command registration and lookup.
// It is thread-safe for concurrent access.
type Registry struct {
	commands map[string]CommandEntry
	aliases  map[string]string // alias → canonical name
	mu       sync.RWMutex
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandEntry),
		aliases:  make(map[string]string),
	}
}

// Register adds a command to the registry. Names and aliases are validated.
// If a command with the same name exists, it is overwritten and a warning
// is logged: last registered wins.
func (r *Registry) Register(entry CommandEntry) error {
	if err := ValidateCommandName(entry.Name); err != nil {
		return err
	}
	for _, alias := range entry.Aliases {
		if err := ValidateAliasName(alias); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.commands[entry.Name]; ok {
		slog.Warn("command conflict: overwriting existing command",
			"command", entry.Name,
			"previous_source", existing.Source,
			"new_source", entry.Source)
		for _, alias := range existing.Aliases {
			delete(r.aliases, alias)
		}
	}

	r.commands[entry.Name] = entry
	for _, alias := range entry.Aliases {
		if target, ok := r.aliases[alias]; ok && target != entry.Name {
			slog.Warn("alias conflict: overwriting existing alias",
				"alias", alias,
				"previous_command", target,
				"new_command", entry.Name)
		}
		r.aliases[alias] = entry.Name
	}
	return nil
}

// Get retrieves a command by name or alias.
// Returns the command entry and true if found, or zero value and false if not found.
func (r *Registry) Get(name string) (CommandEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.commands[name]; ok {
		return entry, true
	}
	if canonical, ok := r.aliases[name]; ok {
		entry, ok := r.commands[canonical]
		return entry, ok
	}
	return CommandEntry{}, false
}

// All returns all registered commands sorted by name.
// The returned slice is a copy and safe to modify.
func (r *Registry) All() []CommandEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]CommandEntry, 0, len(r.commands))
	for _, e := range r.commands {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
