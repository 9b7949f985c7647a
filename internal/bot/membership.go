// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"context"
	"fmt"

	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

// JoinDecision is the answer to a group invitation.
type JoinDecision int

// Join decisions. JoinIgnore leaves the invitation pending.
const (
	JoinIgnore JoinDecision = iota
	JoinAccept
	JoinReject
)

func (d JoinDecision) String() string {
	switch d {
	case JoinAccept:
		return "accept"
	case JoinReject:
		return "reject"
	default:
		return "ignore"
	}
}

const banTimeLayout = "2006-01-02 15:04:05"

// CheckJoin decides an invitation of the bot into actor.GroupID sent by
// actor.UserID. A banned inviter or group is rejected. Otherwise the
// group's join policy decides, and under the default policy an inviter
// holding InviteBot is accepted.
func (s *Service) CheckJoin(ctx context.Context, actor identity.Actor) (decision JoinDecision, err error) {
	ctx, op := s.begin(ctx, "check_join", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil {
		return JoinIgnore, err
	}

	switch {
	case banned != "":
		decision = JoinReject
	case res.Group == nil:
		op.outcome = OutcomeInvalid
		return JoinIgnore, nil
	case res.Group.AllowedToJoin > identity.JoinDefault:
		decision = JoinAccept
	case res.Group.AllowedToJoin < identity.JoinDefault:
		decision = JoinReject
	case access.Has(res.User.Permissions, access.InviteBot):
		decision = JoinAccept
	default:
		decision = JoinIgnore
	}

	s.logger.InfoContext(ctx, "group invitation decided",
		"group_id", actor.GroupID,
		"inviter_id", actor.UserID,
		"decision", decision.String())
	return decision, nil
}

// BanForKicked bans groupID and the operator who removed the bot from it.
// It does nothing and reports false unless the kill switch is on.
func (s *Service) BanForKicked(ctx context.Context, groupID, operatorID string) (banned bool, err error) {
	ctx, op := s.begin(ctx, "ban_kicked", identity.Actor{UserID: operatorID, GroupID: groupID})
	defer op.finish(&err)

	if !s.cfg.KillSwitch {
		return false, nil
	}
	stamp := s.now().Format(banTimeLayout)

	if err := s.banGroup(ctx, groupID, fmt.Sprintf("kicked by user %s at %s", operatorID, stamp)); err != nil {
		return false, err
	}
	if operatorID == "" {
		return true, nil
	}

	user, _, err := s.repos.Users.FindOrCreate(ctx, &identity.User{ID: operatorID})
	if err != nil {
		err = oops.Code("USER_RESOLVE_FAILED").With("user_id", operatorID).Wrap(err)
		errutil.LogError(ctx, s.logger, "load kicking operator", err)
		return false, err
	}
	user.BanReason = fmt.Sprintf("kicked the bot from group %s at %s", groupID, stamp)
	user.Touch(s.now())
	if err := s.repos.Users.Update(ctx, user); err != nil {
		err = oops.Code("USER_UPDATE_FAILED").With("user_id", operatorID).Wrap(err)
		errutil.LogError(ctx, s.logger, "ban kicking operator", err)
		return false, err
	}
	s.logger.WarnContext(ctx, "banned operator for kicking the bot",
		"group_id", groupID, "user_id", operatorID)
	return true, nil
}

// BanForMuted bans groupID after the bot was muted there. It does nothing
// and reports false unless the kill switch is on.
func (s *Service) BanForMuted(ctx context.Context, groupID, operatorID string) (banned bool, err error) {
	ctx, op := s.begin(ctx, "ban_muted", identity.Actor{UserID: operatorID, GroupID: groupID})
	defer op.finish(&err)

	if !s.cfg.KillSwitch {
		return false, nil
	}
	stamp := s.now().Format(banTimeLayout)
	reason := fmt.Sprintf("muted the bot in group %s at %s", groupID, stamp)
	if operatorID != "" {
		reason = fmt.Sprintf("muted by user %s at %s", operatorID, stamp)
	}
	if err := s.banGroup(ctx, groupID, reason); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) banGroup(ctx context.Context, groupID, reason string) error {
	if groupID == "" {
		return oops.Code("GROUP_ID_REQUIRED").Errorf("group id is required")
	}
	group, _, err := s.repos.Groups.FindOrCreate(ctx, groupID)
	if err != nil {
		err = oops.Code("GROUP_RESOLVE_FAILED").With("group_id", groupID).Wrap(err)
		errutil.LogError(ctx, s.logger, "load group to ban", err)
		return err
	}
	group.BanReason = reason
	if err := s.updateGroup(ctx, group, "ban group"); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "banned group", "group_id", groupID, "reason", reason)
	return nil
}
