// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package template

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"golang.org/x/net/html"
)

// DecodeEntities undoes the HTML escaping chat platforms apply to
// user-supplied template text.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// Entry is the effective template for a key as seen from a scope.
type Entry struct {
	Key     string
	Content string
	Tier    Tier
}

// Listing splits registry keys into overridden and unset for one scope.
type Listing struct {
	Overrides []*Template
	Unset     []string
}

// Manager implements the administrative template operations.
type Manager struct {
	repo     Repository
	registry *Registry
	now      func() time.Time
}

// NewManager creates a Manager. A nil registry means Builtin().
func NewManager(repo Repository, registry *Registry) *Manager {
	if registry == nil {
		registry = Builtin()
	}
	return &Manager{repo: repo, registry: registry, now: time.Now}
}

// Get returns the template in effect for key from scope. A group scope
// falls through to the global override and then the built-in default.
func (m *Manager) Get(ctx context.Context, key string, scope Scope) (Entry, error) {
	for _, s := range overrideChain(scope.GroupID) {
		t, err := m.repo.Find(ctx, key, s.scope)
		if err == nil {
			return Entry{Key: key, Content: t.Content, Tier: s.tier}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Entry{}, oops.Code("TEMPLATE_GET_FAILED").
				With("key", key).
				With("scope", s.scope.String()).
				Wrap(err)
		}
	}

	content, ok := m.registry.Default(key)
	if !ok {
		return Entry{}, oops.Code("TEMPLATE_UNKNOWN_KEY").With("key", key).Wrap(ErrUnknownKey)
	}
	return Entry{Key: key, Content: content, Tier: TierBuiltin}, nil
}

// List returns the overrides stored in scope and the registry keys that
// have no override there.
func (m *Manager) List(ctx context.Context, scope Scope) (Listing, error) {
	overrides, err := m.repo.List(ctx, scope)
	if err != nil {
		return Listing{}, oops.Code("TEMPLATE_LIST_FAILED").With("scope", scope.String()).Wrap(err)
	}

	set := make(map[string]struct{}, len(overrides))
	known := overrides[:0:0]
	for _, t := range overrides {
		if !m.registry.Has(t.Key) {
			continue
		}
		set[t.Key] = struct{}{}
		known = append(known, t)
	}

	var unset []string
	for _, key := range m.registry.Keys() {
		if _, ok := set[key]; !ok {
			unset = append(unset, key)
		}
	}
	return Listing{Overrides: known, Unset: unset}, nil
}

// Set stores content as the override for key in scope. HTML entities in
// content are decoded before storing. Keys without a built-in default are
// rejected with ErrUnknownKey and nothing is written.
func (m *Manager) Set(ctx context.Context, key string, scope Scope, content string) (*Template, error) {
	if !m.registry.Has(key) {
		return nil, oops.Code("TEMPLATE_UNKNOWN_KEY").With("key", key).Wrap(ErrUnknownKey)
	}

	t, err := m.repo.Find(ctx, key, scope)
	switch {
	case errors.Is(err, ErrNotFound):
		t = &Template{Key: key, Scope: scope}
		if !scope.IsGlobal() {
			t.ID = ulid.Make()
		}
	case err != nil:
		return nil, oops.Code("TEMPLATE_SET_FAILED").
			With("key", key).
			With("scope", scope.String()).
			Wrap(err)
	}

	t.Content = DecodeEntities(content)
	t.Touch(m.now())
	if err := m.repo.Save(ctx, t); err != nil {
		return nil, oops.Code("TEMPLATE_SET_FAILED").
			With("key", key).
			With("scope", scope.String()).
			Wrap(err)
	}
	return t, nil
}

// Clear deletes the override for key in scope so the next tier applies.
// It returns ErrNotFound when no override was set.
func (m *Manager) Clear(ctx context.Context, key string, scope Scope) error {
	if !m.registry.Has(key) {
		return oops.Code("TEMPLATE_UNKNOWN_KEY").With("key", key).Wrap(ErrUnknownKey)
	}
	if err := m.repo.Delete(ctx, key, scope); err != nil {
		code := "TEMPLATE_CLEAR_FAILED"
		if errors.Is(err, ErrNotFound) {
			code = "TEMPLATE_NOT_SET"
		}
		return oops.Code(code).With("key", key).With("scope", scope.String()).Wrap(err)
	}
	return nil
}
