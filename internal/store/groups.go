// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/identity"
)

// GroupRepository implements identity.GroupRepository using PostgreSQL.
type GroupRepository struct {
	pool poolIface
}

var _ identity.GroupRepository = (*GroupRepository)(nil)

// NewGroupRepository creates a new PostgreSQL group repository.
func NewGroupRepository(pool poolIface) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// FindOrCreate inserts an empty group row unless one exists, then reads it.
func (r *GroupRepository) FindOrCreate(ctx context.Context, id string) (*identity.Group, bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO chat_groups (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return nil, false, oops.Code("GROUP_CREATE_FAILED").With("group_id", id).Wrap(err)
	}

	var g identity.Group
	var allowed int
	err = r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(ban_reason, ''), allowed_to_join, COALESCE(welcome_message, ''), created_at, updated_at
		FROM chat_groups WHERE id = $1
	`, id).Scan(&g.ID, &g.BanReason, &allowed, &g.WelcomeMessage, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, oops.Code("GROUP_NOT_FOUND").With("group_id", id).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, false, oops.Code("GROUP_GET_FAILED").With("group_id", id).Wrap(err)
	}
	g.AllowedToJoin = identity.JoinPolicy(allowed)
	return &g, tag.RowsAffected() == 1, nil
}

// Update writes ban reason, join policy, and welcome message.
func (r *GroupRepository) Update(ctx context.Context, group *identity.Group) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_groups
		SET ban_reason = NULLIF($2, ''), allowed_to_join = $3, welcome_message = NULLIF($4, ''), updated_at = $5
		WHERE id = $1
	`, group.ID, group.BanReason, int(group.AllowedToJoin), group.WelcomeMessage, group.UpdatedAt)
	if err != nil {
		return oops.Code("GROUP_UPDATE_FAILED").With("group_id", group.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("GROUP_NOT_FOUND").With("group_id", group.ID).Wrap(identity.ErrNotFound)
	}
	return nil
}
