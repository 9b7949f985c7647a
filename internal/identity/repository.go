// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserFilter narrows a user listing. Empty fields match everything.
type UserFilter struct {
	ID   string
	Name string
}

// UserRepository persists users.
type UserRepository interface {
	// FindOrCreate returns the user with defaults.ID, inserting defaults
	// when no such row exists. created reports whether this call inserted it.
	FindOrCreate(ctx context.Context, defaults *User) (user *User, created bool, err error)

	// Update writes name, permissions, and ban reason.
	Update(ctx context.Context, user *User) error

	// List returns users matching every non-empty filter field.
	List(ctx context.Context, filter UserFilter) ([]*User, error)

	// FindByIDOrName returns users whose id or name equals field.
	FindByIDOrName(ctx context.Context, field string) ([]*User, error)
}

// GroupRepository persists groups.
type GroupRepository interface {
	// FindOrCreate returns the group with id, inserting it when absent.
	FindOrCreate(ctx context.Context, id string) (group *Group, created bool, err error)

	// Update writes ban reason, join policy, and welcome message.
	Update(ctx context.Context, group *Group) error
}

// ProfileRepository persists per-group user profiles.
type ProfileRepository interface {
	// FindOrCreate returns the profile for (defaults.UserID, defaults.GroupID),
	// inserting defaults when absent.
	FindOrCreate(ctx context.Context, defaults *GroupUserProfile) (profile *GroupUserProfile, created bool, err error)

	// Update writes name and ban reason.
	Update(ctx context.Context, profile *GroupUserProfile) error

	// FindInGroup returns profiles in groupID whose profile name, user id,
	// or user name equals field.
	FindInGroup(ctx context.Context, groupID, field string) ([]ProfileDetail, error)
}
