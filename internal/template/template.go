// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package template resolves response templates through group overrides,
// global overrides, and built-in defaults, and renders them with mustache.
package template

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"

	"github.com/purerosefallen/YuzuDice/internal/entity"
)

var (
	// ErrNotFound is returned when no override exists for a key and scope.
	ErrNotFound = errors.New("template not found")

	// ErrUnknownKey is returned when a key has no built-in default.
	ErrUnknownKey = errors.New("unknown template key")
)

// Scope selects where an override lives. The zero value is global.
type Scope struct {
	GroupID string
}

// Global is the scope of process-wide overrides.
func Global() Scope { return Scope{} }

// ForGroup returns the scope of overrides for one group.
func ForGroup(groupID string) Scope { return Scope{GroupID: groupID} }

// IsGlobal reports whether the scope is global.
func (s Scope) IsGlobal() bool { return s.GroupID == "" }

// String names the scope for messages and logs.
func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "group " + s.GroupID
}

// Tier names where resolved content came from.
type Tier string

// Resolution tiers in precedence order.
const (
	TierGroup   Tier = "group"
	TierGlobal  Tier = "global"
	TierBuiltin Tier = "builtin"
)

type tierScope struct {
	scope Scope
	tier  Tier
}

// overrideChain lists the override scopes consulted for groupID, most
// specific first.
func overrideChain(groupID string) []tierScope {
	if groupID == "" {
		return []tierScope{{Global(), TierGlobal}}
	}
	return []tierScope{{ForGroup(groupID), TierGroup}, {Global(), TierGlobal}}
}

// Template is a persisted override. ID is only assigned for group scope.
type Template struct {
	ID      ulid.ULID
	Key     string
	Scope   Scope
	Content string // already entity-decoded
	entity.Audit
}

// Repository persists template overrides.
type Repository interface {
	// Find returns the override for key in scope or ErrNotFound.
	Find(ctx context.Context, key string, scope Scope) (*Template, error)

	// List returns every override in scope ordered by key.
	List(ctx context.Context, scope Scope) ([]*Template, error)

	// Save inserts or replaces the override for (t.Scope, t.Key).
	Save(ctx context.Context, t *Template) error

	// Delete removes the override for key in scope or returns ErrNotFound.
	Delete(ctx context.Context, key string, scope Scope) error
}
