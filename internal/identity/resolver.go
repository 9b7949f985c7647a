// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

// BanLevel names the record a ban was found on.
type BanLevel string

// Ban levels in cascade order.
const (
	BanLevelUser    BanLevel = "user"
	BanLevelGroup   BanLevel = "group"
	BanLevelProfile BanLevel = "profile"
)

// Ban describes why an actor was short-circuited.
type Ban struct {
	Level  BanLevel
	Reason string
}

// Resolution is the outcome of resolving an Actor. When Ban is set, only
// the records checked before the ban are populated.
type Resolution struct {
	User    *User
	Group   *Group
	Profile *GroupUserProfile
	Ban     *Ban
}

// Banned reports whether resolution stopped on a ban.
func (r Resolution) Banned() bool { return r.Ban != nil }

// DisplayName returns profile name, then user name, then fallback.
func (r Resolution) DisplayName(fallback string) string {
	return displayName(r.Profile, r.User, fallback)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the time source used for audit timestamps.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// Resolver materializes identities and applies the ban cascade.
type Resolver struct {
	users    UserRepository
	groups   GroupRepository
	profiles ProfileRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given repositories.
func NewResolver(users UserRepository, groups GroupRepository, profiles ProfileRepository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		users:    users,
		groups:   groups,
		profiles: profiles,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds or creates the records behind actor, stopping at the first
// ban in user, group, profile order. Store failures are logged and returned.
func (r *Resolver) Resolve(ctx context.Context, actor Actor) (Resolution, error) {
	var res Resolution

	if actor.UserID != "" {
		user, err := r.resolveUser(ctx, actor)
		if err != nil {
			return Resolution{}, err
		}
		res.User = user
		if user.Banned() {
			res.Ban = &Ban{Level: BanLevelUser, Reason: user.BanReason}
			return res, nil
		}
	}

	if actor.GroupID != "" {
		group, _, err := r.groups.FindOrCreate(ctx, actor.GroupID)
		if err != nil {
			err = oops.Code("GROUP_RESOLVE_FAILED").With("group_id", actor.GroupID).Wrap(err)
			errutil.LogError(ctx, r.logger, "resolve group", err, "group_id", actor.GroupID)
			return Resolution{}, err
		}
		res.Group = group
		if group.Banned() {
			res.Ban = &Ban{Level: BanLevelGroup, Reason: group.BanReason}
			return res, nil
		}
	}

	if res.User != nil && res.Group != nil {
		profile, err := r.resolveProfile(ctx, res.User, res.Group)
		if err != nil {
			return Resolution{}, err
		}
		res.Profile = profile
		if profile.Banned() {
			res.Ban = &Ban{Level: BanLevelProfile, Reason: profile.BanReason}
			return res, nil
		}
	}

	return res, nil
}

func (r *Resolver) resolveUser(ctx context.Context, actor Actor) (*User, error) {
	defaults := &User{ID: actor.UserID, Name: actor.Username}
	defaults.Touch(r.now())

	user, created, err := r.users.FindOrCreate(ctx, defaults)
	if err != nil {
		err = oops.Code("USER_RESOLVE_FAILED").With("user_id", actor.UserID).Wrap(err)
		errutil.LogError(ctx, r.logger, "resolve user", err, "user_id", actor.UserID)
		return nil, err
	}

	if !created && user.Name == "" && actor.Username != "" {
		user.Name = actor.Username
		user.Touch(r.now())
		if err := r.users.Update(ctx, user); err != nil {
			err = oops.Code("USER_UPDATE_FAILED").With("user_id", actor.UserID).Wrap(err)
			errutil.LogError(ctx, r.logger, "backfill user name", err, "user_id", actor.UserID)
			return nil, err
		}
	}
	return user, nil
}

func (r *Resolver) resolveProfile(ctx context.Context, user *User, group *Group) (*GroupUserProfile, error) {
	defaults := &GroupUserProfile{
		ID:      ulid.Make(),
		UserID:  user.ID,
		GroupID: group.ID,
		Name:    user.Name,
	}
	defaults.Touch(r.now())

	profile, _, err := r.profiles.FindOrCreate(ctx, defaults)
	if err != nil {
		err = oops.Code("PROFILE_RESOLVE_FAILED").
			With("user_id", user.ID).
			With("group_id", group.ID).
			Wrap(err)
		errutil.LogError(ctx, r.logger, "resolve profile", err, "user_id", user.ID, "group_id", group.ID)
		return nil, err
	}
	return profile, nil
}
