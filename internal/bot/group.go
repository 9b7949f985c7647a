// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"context"

	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

// welcomeData is what a welcome message template can reference.
func welcomeData(res identity.Resolution, actor identity.Actor) map[string]any {
	return map[string]any{
		"name":  res.DisplayName(actor.Username),
		"user":  map[string]any{"id": actor.UserID, "name": res.DisplayName(actor.Username)},
		"group": map[string]any{"id": actor.GroupID},
	}
}

// ShowWelcome shows the group's welcome message and a preview rendered
// for the actor.
func (s *Service) ShowWelcome(ctx context.Context, actor identity.Actor) (reply string, err error) {
	ctx, op := s.begin(ctx, "welcome_show", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}
	if res.Group == nil {
		return s.groupOnly(ctx, op, actor), nil
	}
	if res.Group.WelcomeMessage == "" {
		return s.render(ctx, template.KeyWelcomeMessageNotFound, nil, actor), nil
	}

	demo, err := template.Execute(res.Group.WelcomeMessage, welcomeData(res, actor))
	if err != nil {
		demo = err.Error()
	}
	return s.render(ctx, template.KeyWelcomeMessageDemo, map[string]any{
		"message": res.Group.WelcomeMessage,
		"demo":    demo,
	}, actor), nil
}

// SetWelcome replaces the group's welcome message. An empty message
// removes it. HTML entities are decoded before storing.
func (s *Service) SetWelcome(ctx context.Context, actor identity.Actor, message string) (reply string, err error) {
	ctx, op := s.begin(ctx, "welcome_set", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}
	if res.Group == nil {
		return s.groupOnly(ctx, op, actor), nil
	}
	allowed, err := s.authorize(ctx, res, actor, access.GroupWrite, true)
	if err != nil {
		return "", err
	}
	if !allowed {
		return s.denied(ctx, op, actor, "change the welcome message"), nil
	}

	res.Group.WelcomeMessage = template.DecodeEntities(message)
	if err := s.updateGroup(ctx, res.Group, "set welcome message"); err != nil {
		return "", err
	}
	return s.render(ctx, template.KeyWelcomeMessageSet, map[string]any{
		"message": res.Group.WelcomeMessage,
	}, actor), nil
}

// Welcome renders the greeting for a member who just joined the actor's
// group. ok is false when nothing should be sent: the member or group is
// banned, the group has no message, or the message does not render.
func (s *Service) Welcome(ctx context.Context, actor identity.Actor) (reply string, ok bool, err error) {
	ctx, op := s.begin(ctx, "welcome", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return "", false, err
	}
	if res.Group == nil || res.Group.WelcomeMessage == "" {
		return "", false, nil
	}

	out, err := template.Execute(res.Group.WelcomeMessage, welcomeData(res, actor))
	if err != nil {
		op.outcome = OutcomeInvalid
		s.logger.WarnContext(ctx, "welcome message failed to render",
			"group_id", actor.GroupID, "error", err)
		return "", false, nil
	}
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}

// SetGroupAllow sets the join policy of groupID, or of the current group
// when groupID is empty. It needs InviteBot.
func (s *Service) SetGroupAllow(ctx context.Context, actor identity.Actor, groupID string, policy identity.JoinPolicy) (reply string, err error) {
	ctx, op := s.begin(ctx, "group_allow", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}
	if !access.Has(res.User.Permissions, access.InviteBot) {
		return s.denied(ctx, op, actor, "change the join policy"), nil
	}
	if groupID == "" {
		groupID = actor.GroupID
	}
	if groupID == "" || policy < identity.JoinDeny || policy > identity.JoinAllow {
		return s.badParams(ctx, op, actor), nil
	}

	group, _, err := s.repos.Groups.FindOrCreate(ctx, groupID)
	if err != nil {
		err = oops.Code("GROUP_RESOLVE_FAILED").With("group_id", groupID).Wrap(err)
		errutil.LogError(ctx, s.logger, "load group", err)
		return "", err
	}
	group.AllowedToJoin = policy
	if err := s.updateGroup(ctx, group, "set join policy"); err != nil {
		return "", err
	}
	return s.render(ctx, template.KeyGroupAllowSet, map[string]any{
		"groupId": groupID,
		"value":   policy.String(),
	}, actor), nil
}

// LeaveResult tells the transport what to say and whether to leave.
type LeaveResult struct {
	Message string
	// GroupID is the group to leave when Leave is set.
	GroupID string
	Leave   bool
}

// Leave asks the bot to leave groupID, or the current group when groupID
// is empty. Leaving the current group needs DismissBot or group
// administration; leaving another group needs DismissBot.
func (s *Service) Leave(ctx context.Context, actor identity.Actor, groupID string) (result LeaveResult, err error) {
	ctx, op := s.begin(ctx, "leave", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return LeaveResult{Message: banned}, err
	}

	target := groupID
	if target == "" {
		target = actor.GroupID
	}
	if target == "" {
		return LeaveResult{Message: s.groupOnly(ctx, op, actor)}, nil
	}

	allowed, err := s.authorize(ctx, res, actor, access.DismissBot, target == actor.GroupID)
	if err != nil {
		return LeaveResult{}, err
	}
	if !allowed {
		return LeaveResult{Message: s.denied(ctx, op, actor, "dismiss the bot")}, nil
	}

	msg := s.render(ctx, template.KeyLeaveGroup, map[string]any{"groupId": target}, actor)
	return LeaveResult{Message: msg, GroupID: target, Leave: true}, nil
}

func (s *Service) updateGroup(ctx context.Context, group *identity.Group, action string) error {
	group.Touch(s.now())
	if err := s.repos.Groups.Update(ctx, group); err != nil {
		err = oops.Code("GROUP_UPDATE_FAILED").With("group_id", group.ID).Wrap(err)
		errutil.LogError(ctx, s.logger, action, err)
		return err
	}
	return nil
}
