// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/template"
)

// TemplateRepository implements template.Repository using PostgreSQL.
// Group overrides live in group_templates, global ones in default_templates.
type TemplateRepository struct {
	pool poolIface
}

var _ template.Repository = (*TemplateRepository)(nil)

// NewTemplateRepository creates a new PostgreSQL template repository.
func NewTemplateRepository(pool poolIface) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Find returns the override for key in scope.
func (r *TemplateRepository) Find(ctx context.Context, key string, scope template.Scope) (*template.Template, error) {
	var row pgx.Row
	if scope.IsGlobal() {
		row = r.pool.QueryRow(ctx, `
			SELECT '', key, content, created_at, updated_at
			FROM default_templates WHERE key = $1
		`, key)
	} else {
		row = r.pool.QueryRow(ctx, `
			SELECT id, key, content, created_at, updated_at
			FROM group_templates WHERE group_id = $1 AND key = $2
		`, scope.GroupID, key)
	}

	t, err := scanTemplate(row, scope)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TEMPLATE_NOT_FOUND").
			With("key", key).
			With("scope", scope.String()).
			Wrap(template.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TEMPLATE_GET_FAILED").
			With("key", key).
			With("scope", scope.String()).
			Wrap(err)
	}
	return t, nil
}

// List returns every override in scope ordered by key.
func (r *TemplateRepository) List(ctx context.Context, scope template.Scope) ([]*template.Template, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.IsGlobal() {
		rows, err = r.pool.Query(ctx, `
			SELECT '', key, content, created_at, updated_at
			FROM default_templates ORDER BY key
		`)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT id, key, content, created_at, updated_at
			FROM group_templates WHERE group_id = $1 ORDER BY key
		`, scope.GroupID)
	}
	if err != nil {
		return nil, oops.Code("TEMPLATE_QUERY_FAILED").With("scope", scope.String()).Wrap(err)
	}
	defer rows.Close()

	var out []*template.Template
	for rows.Next() {
		t, err := scanTemplate(rows, scope)
		if err != nil {
			return nil, oops.Code("TEMPLATE_SCAN_FAILED").With("scope", scope.String()).Wrap(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TEMPLATE_QUERY_FAILED").With("scope", scope.String()).Wrap(err)
	}
	return out, nil
}

// Save inserts or replaces the override for (t.Scope, t.Key).
func (r *TemplateRepository) Save(ctx context.Context, t *template.Template) error {
	var err error
	if t.Scope.IsGlobal() {
		_, err = r.pool.Exec(ctx, `
			INSERT INTO default_templates (key, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (key) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
		`, t.Key, t.Content, t.CreatedAt, t.UpdatedAt)
	} else {
		_, err = r.pool.Exec(ctx, `
			INSERT INTO group_templates (id, group_id, key, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (group_id, key) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
		`, t.ID.String(), t.Scope.GroupID, t.Key, t.Content, t.CreatedAt, t.UpdatedAt)
	}
	if err != nil {
		code := "TEMPLATE_SAVE_FAILED"
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			code = "TEMPLATE_GROUP_MISSING"
		}
		return oops.Code(code).With("key", t.Key).With("scope", t.Scope.String()).Wrap(err)
	}
	return nil
}

// Delete removes the override for key in scope.
func (r *TemplateRepository) Delete(ctx context.Context, key string, scope template.Scope) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if scope.IsGlobal() {
		tag, err = r.pool.Exec(ctx, `DELETE FROM default_templates WHERE key = $1`, key)
	} else {
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM group_templates WHERE group_id = $1 AND key = $2`, scope.GroupID, key)
	}
	if err != nil {
		return oops.Code("TEMPLATE_DELETE_FAILED").With("key", key).With("scope", scope.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TEMPLATE_NOT_FOUND").
			With("key", key).
			With("scope", scope.String()).
			Wrap(template.ErrNotFound)
	}
	return nil
}

func scanTemplate(row pgx.Row, scope template.Scope) (*template.Template, error) {
	var (
		t  template.Template
		id string
	)
	if err := row.Scan(&id, &t.Key, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if id != "" {
		parsed, err := ulid.Parse(id)
		if err != nil {
			return nil, oops.With("operation", "parse template id").With("template_id", id).Wrap(err)
		}
		t.ID = parsed
	}
	t.Scope = scope
	return &t, nil
}
