// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package templatetest provides an in-memory template.Repository for tests.
package templatetest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/purerosefallen/YuzuDice/internal/template"
)

type rowKey struct {
	groupID string
	key     string
}

// Repository is an in-memory template.Repository. Set FindErr to make
// every Find fail, e.g. to exercise store-failure fallbacks.
type Repository struct {
	mu      sync.Mutex
	rows    map[rowKey]template.Template
	FindErr error
}

var _ template.Repository = (*Repository)(nil)

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{rows: make(map[rowKey]template.Template)}
}

// Put stores content for key in scope without going through a Manager.
func (r *Repository) Put(key string, scope template.Scope, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rowKey{scope.GroupID, key}] = template.Template{Key: key, Scope: scope, Content: content}
}

func (r *Repository) Find(_ context.Context, key string, scope template.Scope) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	t, ok := r.rows[rowKey{scope.GroupID, key}]
	if !ok {
		return nil, template.ErrNotFound
	}
	return &t, nil
}

func (r *Repository) List(_ context.Context, scope template.Scope) ([]*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*template.Template
	for k, t := range r.rows {
		if k.groupID == scope.GroupID {
			out = append(out, &t)
		}
	}
	slices.SortFunc(out, func(a, b *template.Template) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (r *Repository) Save(_ context.Context, t *template.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rowKey{t.Scope.GroupID, t.Key}] = *t
	return nil
}

func (r *Repository) Delete(_ context.Context, key string, scope template.Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := rowKey{scope.GroupID, key}
	if _, ok := r.rows[k]; !ok {
		return template.ErrNotFound
	}
	delete(r.rows, k)
	return nil
}
