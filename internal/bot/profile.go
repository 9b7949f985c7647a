// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
	"golang.org/x/text/unicode/norm"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

const profileSeparator = "\n----------\n"

// NormalizeName trims and NFC-normalizes a display name and reports
// whether it is between 1 and maxLen runes long.
func NormalizeName(name string, maxLen int) (string, bool) {
	n := norm.NFC.String(strings.TrimSpace(name))
	l := utf8.RuneCountInString(n)
	return n, l >= 1 && l <= maxLen
}

// SetName changes the actor's display name, globally or in the current group.
func (s *Service) SetName(ctx context.Context, actor identity.Actor, name string, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "name_set", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}
	if !global && res.Profile == nil {
		return s.groupOnly(ctx, op, actor), nil
	}

	normalized, ok := NormalizeName(name, s.cfg.MaxNameLength)
	if !ok {
		op.outcome = OutcomeInvalid
		return s.render(ctx, template.KeyBadName, map[string]any{
			"name": name,
			"max":  s.cfg.MaxNameLength,
		}, actor), nil
	}

	if global {
		res.User.Name = normalized
		res.User.Touch(s.now())
		if err := s.repos.Users.Update(ctx, res.User); err != nil {
			err = oops.Code("USER_UPDATE_FAILED").With("user_id", res.User.ID).Wrap(err)
			errutil.LogError(ctx, s.logger, "set global name", err)
			return "", err
		}
		return s.render(ctx, template.KeyGlobalNameChanged, map[string]any{"name": normalized}, actor), nil
	}

	res.Profile.Name = normalized
	res.Profile.Touch(s.now())
	if err := s.repos.Profiles.Update(ctx, res.Profile); err != nil {
		err = oops.Code("PROFILE_UPDATE_FAILED").
			With("user_id", res.User.ID).
			With("group_id", actor.GroupID).
			Wrap(err)
		errutil.LogError(ctx, s.logger, "set group name", err)
		return "", err
	}
	return s.render(ctx, template.KeyGroupNameChanged, map[string]any{"name": normalized}, actor), nil
}

// ShowProfile shows the actor's own profile when field is empty, otherwise
// every profile whose user id or name matches field. Looking at other
// users needs GroupRead (or group administration) in a group and UserRead
// globally.
func (s *Service) ShowProfile(ctx context.Context, actor identity.Actor, field string, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "profile_show", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}
	if global {
		return s.showGlobalProfile(ctx, op, res, actor, field)
	}
	if res.Profile == nil {
		return s.groupOnly(ctx, op, actor), nil
	}
	return s.showGroupProfile(ctx, op, res, actor, field)
}

func (s *Service) showGroupProfile(ctx context.Context, op *operation, res identity.Resolution, actor identity.Actor, field string) (string, error) {
	if field == "" {
		return s.renderGroupProfile(ctx, identity.ProfileDetail{Profile: res.Profile, User: res.User}, actor), nil
	}

	allowed, err := s.authorize(ctx, res, actor, access.GroupRead, true)
	if err != nil {
		return "", err
	}
	if !allowed {
		return s.denied(ctx, op, actor, "view group profiles"), nil
	}

	details, err := s.repos.Profiles.FindInGroup(ctx, actor.GroupID, field)
	if err != nil {
		err = oops.Code("PROFILE_QUERY_FAILED").With("group_id", actor.GroupID).Wrap(err)
		errutil.LogError(ctx, s.logger, "find group profiles", err)
		return "", err
	}
	if len(details) == 0 {
		return s.userNotFound(ctx, op, actor, field), nil
	}

	parts := make([]string, len(details))
	for i, d := range details {
		parts[i] = s.renderGroupProfile(ctx, d, actor)
	}
	return strings.Join(parts, profileSeparator), nil
}

func (s *Service) renderGroupProfile(ctx context.Context, d identity.ProfileDetail, actor identity.Actor) string {
	return s.render(ctx, template.KeyGroupUserProfile, map[string]any{
		"displayName": d.DisplayName(d.User.ID),
		"name":        d.Profile.Name,
		"banReason":   d.Profile.BanReason,
		"user":        map[string]any{"id": d.User.ID, "name": d.User.Name},
		"group":       map[string]any{"id": d.Profile.GroupID},
	}, actor)
}

func (s *Service) showGlobalProfile(ctx context.Context, op *operation, res identity.Resolution, actor identity.Actor, field string) (string, error) {
	if field == "" {
		return s.renderGlobalProfile(ctx, res.User, actor), nil
	}
	if !access.Has(res.User.Permissions, access.UserRead) {
		return s.denied(ctx, op, actor, "view user profiles"), nil
	}

	users, err := s.repos.Users.FindByIDOrName(ctx, field)
	if err != nil {
		err = oops.Code("USER_QUERY_FAILED").With("field", field).Wrap(err)
		errutil.LogError(ctx, s.logger, "find users", err)
		return "", err
	}
	if len(users) == 0 {
		return s.userNotFound(ctx, op, actor, field), nil
	}

	parts := make([]string, len(users))
	for i, u := range users {
		parts[i] = s.renderGlobalProfile(ctx, u, actor)
	}
	return strings.Join(parts, profileSeparator), nil
}

func (s *Service) renderGlobalProfile(ctx context.Context, u *identity.User, actor identity.Actor) string {
	perms := "none"
	if names := access.NamesOf(u.Permissions); len(names) > 0 {
		perms = strings.Join(names, ", ")
	}
	name := u.Name
	if name == "" {
		name = u.ID
	}
	return s.render(ctx, template.KeyGlobalUserProfile, map[string]any{
		"id":          u.ID,
		"name":        name,
		"permissions": perms,
		"banReason":   u.BanReason,
	}, actor)
}

func (s *Service) userNotFound(ctx context.Context, op *operation, actor identity.Actor, field string) string {
	op.outcome = OutcomeInvalid
	return s.render(ctx, template.KeyUserNotFound, map[string]any{"field": field}, actor)
}
