// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

// listLimit caps admin listings.
const listLimit = 100

const userColumns = `id, COALESCE(name, ''), permissions, COALESCE(ban_reason, ''), created_at, updated_at`

// UserRepository implements identity.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

var _ identity.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindOrCreate inserts defaults unless a user with the same id exists, then
// reads the stored row.
func (r *UserRepository) FindOrCreate(ctx context.Context, defaults *identity.User) (*identity.User, bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, permissions, ban_reason, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, defaults.ID, defaults.Name, int64(defaults.Permissions), defaults.BanReason,
		defaults.CreatedAt, defaults.UpdatedAt)
	if err != nil {
		return nil, false, oops.Code("USER_CREATE_FAILED").With("user_id", defaults.ID).Wrap(err)
	}

	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, defaults.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, oops.Code("USER_NOT_FOUND").With("user_id", defaults.ID).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, false, oops.Code("USER_GET_FAILED").With("user_id", defaults.ID).Wrap(err)
	}
	return user, tag.RowsAffected() == 1, nil
}

// Update writes name, permissions, and ban reason.
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = NULLIF($2, ''), permissions = $3, ban_reason = NULLIF($4, ''), updated_at = $5
		WHERE id = $1
	`, user.ID, user.Name, int64(user.Permissions), user.BanReason, user.UpdatedAt)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", user.ID).Wrap(identity.ErrNotFound)
	}
	return nil
}

// List returns users matching every non-empty filter field, ordered by id.
func (r *UserRepository) List(ctx context.Context, filter identity.UserFilter) ([]*identity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR id = $1) AND ($2 = '' OR name = $2)
		ORDER BY id
		LIMIT $3
	`, filter.ID, filter.Name, listLimit)
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("id", filter.ID).With("name", filter.Name).Wrap(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// FindByIDOrName returns users whose id or name equals field.
func (r *UserRepository) FindByIDOrName(ctx context.Context, field string) ([]*identity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 OR name = $1
		ORDER BY id
		LIMIT $2
	`, field, listLimit)
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("field", field).Wrap(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		u     identity.User
		perms int64
	)
	if err := row.Scan(&u.ID, &u.Name, &perms, &u.BanReason, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Permissions = access.Permission(perms)
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*identity.User, error) {
	var users []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").Wrap(err)
	}
	return users, nil
}
