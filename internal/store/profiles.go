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

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

const profileColumns = `id, user_id, group_id, COALESCE(name, ''), COALESCE(ban_reason, ''), created_at, updated_at`

// ProfileRepository implements identity.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool poolIface
}

var _ identity.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new PostgreSQL profile repository.
func NewProfileRepository(pool poolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// FindOrCreate inserts defaults unless the (user, group) pair already has a
// profile, then reads the stored row. Both owners must already exist.
func (r *ProfileRepository) FindOrCreate(ctx context.Context, defaults *identity.GroupUserProfile) (*identity.GroupUserProfile, bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO group_user_profiles (id, user_id, group_id, name, ban_reason, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`, defaults.ID.String(), defaults.UserID, defaults.GroupID, defaults.Name, defaults.BanReason,
		defaults.CreatedAt, defaults.UpdatedAt)
	if err != nil {
		code := "PROFILE_CREATE_FAILED"
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			code = "PROFILE_OWNER_MISSING"
		}
		return nil, false, oops.Code(code).
			With("user_id", defaults.UserID).
			With("group_id", defaults.GroupID).
			Wrap(err)
	}

	p, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM group_user_profiles
		WHERE user_id = $1 AND group_id = $2
	`, defaults.UserID, defaults.GroupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, oops.Code("PROFILE_NOT_FOUND").
			With("user_id", defaults.UserID).
			With("group_id", defaults.GroupID).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, false, oops.Code("PROFILE_GET_FAILED").
			With("user_id", defaults.UserID).
			With("group_id", defaults.GroupID).
			Wrap(err)
	}
	return p, tag.RowsAffected() == 1, nil
}

// Update writes name and ban reason.
func (r *ProfileRepository) Update(ctx context.Context, profile *identity.GroupUserProfile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE group_user_profiles
		SET name = NULLIF($3, ''), ban_reason = NULLIF($4, ''), updated_at = $5
		WHERE user_id = $1 AND group_id = $2
	`, profile.UserID, profile.GroupID, profile.Name, profile.BanReason, profile.UpdatedAt)
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").
			With("user_id", profile.UserID).
			With("group_id", profile.GroupID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PROFILE_NOT_FOUND").
			With("user_id", profile.UserID).
			With("group_id", profile.GroupID).
			Wrap(identity.ErrNotFound)
	}
	return nil
}

// FindInGroup returns profiles in groupID whose profile name, user id, or
// user name equals field, each joined with its user.
func (r *ProfileRepository) FindInGroup(ctx context.Context, groupID, field string) ([]identity.ProfileDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.user_id, p.group_id, COALESCE(p.name, ''), COALESCE(p.ban_reason, ''), p.created_at, p.updated_at,
		       u.id, COALESCE(u.name, ''), u.permissions, COALESCE(u.ban_reason, ''), u.created_at, u.updated_at
		FROM group_user_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.group_id = $1 AND (p.name = $2 OR u.id = $2 OR u.name = $2)
		ORDER BY u.id
		LIMIT $3
	`, groupID, field, listLimit)
	if err != nil {
		return nil, oops.Code("PROFILE_QUERY_FAILED").With("group_id", groupID).With("field", field).Wrap(err)
	}
	defer rows.Close()

	var details []identity.ProfileDetail
	for rows.Next() {
		var (
			p     identity.GroupUserProfile
			u     identity.User
			id    string
			perms int64
		)
		if err := rows.Scan(&id, &p.UserID, &p.GroupID, &p.Name, &p.BanReason, &p.CreatedAt, &p.UpdatedAt,
			&u.ID, &u.Name, &perms, &u.BanReason, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, oops.Code("PROFILE_SCAN_FAILED").With("group_id", groupID).Wrap(err)
		}
		if p.ID, err = ulid.Parse(id); err != nil {
			return nil, oops.Code("PROFILE_SCAN_FAILED").With("profile_id", id).Wrap(err)
		}
		u.Permissions = access.Permission(perms)
		details = append(details, identity.ProfileDetail{Profile: &p, User: &u})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PROFILE_QUERY_FAILED").With("group_id", groupID).Wrap(err)
	}
	return details, nil
}

func scanProfile(row pgx.Row) (*identity.GroupUserProfile, error) {
	var (
		p  identity.GroupUserProfile
		id string
	)
	if err := row.Scan(&id, &p.UserID, &p.GroupID, &p.Name, &p.BanReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, oops.With("operation", "parse profile id").With("profile_id", id).Wrap(err)
	}
	p.ID = parsed
	return &p, nil
}
