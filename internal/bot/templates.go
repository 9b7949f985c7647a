// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

// templateScope picks the scope an administration command acts on and the
// permission it needs. ok is false when a group scope is asked for outside
// a group.
func templateScope(actor identity.Actor, global bool, read bool) (scope template.Scope, required access.Permission, ok bool) {
	switch {
	case global && read:
		return template.Global(), access.TemplateRead, true
	case global:
		return template.Global(), access.TemplateWrite, true
	case actor.GroupID == "":
		return template.Scope{}, 0, false
	case read:
		return template.ForGroup(actor.GroupID), access.GroupTemplateRead, true
	default:
		return template.ForGroup(actor.GroupID), access.GroupTemplateWrite, true
	}
}

// authorizeTemplate resolves scope and permission for a template command.
// A non-empty reply means the command stops there.
func (s *Service) authorizeTemplate(ctx context.Context, op *operation, actor identity.Actor, global, read bool, action string) (template.Scope, string, error) {
	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return template.Scope{}, banned, err
	}
	scope, required, ok := templateScope(actor, global, read)
	if !ok {
		return template.Scope{}, s.groupOnly(ctx, op, actor), nil
	}
	allowed, err := s.authorize(ctx, res, actor, required, !global)
	if err != nil {
		return template.Scope{}, "", err
	}
	if !allowed {
		return template.Scope{}, s.denied(ctx, op, actor, action), nil
	}
	return scope, "", nil
}

// GetTemplate shows the content in effect for key and the tier it came from.
func (s *Service) GetTemplate(ctx context.Context, actor identity.Actor, key string, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "template_get", actor)
	defer op.finish(&err)

	scope, stop, err := s.authorizeTemplate(ctx, op, actor, global, true, "read templates")
	if err != nil || stop != "" {
		return stop, err
	}

	entry, err := s.manager.Get(ctx, key, scope)
	if errors.Is(err, template.ErrUnknownKey) {
		op.outcome = OutcomeInvalid
		return unknownKey(key), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s):\n%s", entry.Key, entry.Tier, entry.Content), nil
}

// ListTemplates lists the overrides in a scope and the keys without one.
func (s *Service) ListTemplates(ctx context.Context, actor identity.Actor, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "template_list", actor)
	defer op.finish(&err)

	scope, stop, err := s.authorizeTemplate(ctx, op, actor, global, true, "read templates")
	if err != nil || stop != "" {
		return stop, err
	}

	listing, err := s.manager.List(ctx, scope)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Templates set in %s:", scope)
	if len(listing.Overrides) == 0 {
		b.WriteString("\n(none)")
	}
	for _, t := range listing.Overrides {
		fmt.Fprintf(&b, "\n%s => %s", t.Key, t.Content)
	}
	if len(listing.Unset) > 0 {
		fmt.Fprintf(&b, "\n\nNot set: %s", strings.Join(listing.Unset, ", "))
	}
	return b.String(), nil
}

// SetTemplate stores content as the override for key.
func (s *Service) SetTemplate(ctx context.Context, actor identity.Actor, key, content string, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "template_set", actor)
	defer op.finish(&err)

	scope, stop, err := s.authorizeTemplate(ctx, op, actor, global, false, "change templates")
	if err != nil || stop != "" {
		return stop, err
	}

	t, err := s.manager.Set(ctx, key, scope, content)
	if errors.Is(err, template.ErrUnknownKey) {
		op.outcome = OutcomeInvalid
		return unknownKey(key), nil
	}
	if err != nil {
		return "", err
	}
	return s.render(ctx, template.KeyTemplateSet, map[string]any{
		"key":     key,
		"scope":   scope.String(),
		"content": t.Content,
	}, actor), nil
}

// ClearTemplate deletes the override for key so the next tier applies.
func (s *Service) ClearTemplate(ctx context.Context, actor identity.Actor, key string, global bool) (reply string, err error) {
	ctx, op := s.begin(ctx, "template_clear", actor)
	defer op.finish(&err)

	scope, stop, err := s.authorizeTemplate(ctx, op, actor, global, false, "change templates")
	if err != nil || stop != "" {
		return stop, err
	}

	err = s.manager.Clear(ctx, key, scope)
	switch {
	case errors.Is(err, template.ErrUnknownKey):
		op.outcome = OutcomeInvalid
		return unknownKey(key), nil
	case errors.Is(err, template.ErrNotFound):
		op.outcome = OutcomeInvalid
		return fmt.Sprintf("Template %s is not set in %s.", key, scope), nil
	case err != nil:
		return "", err
	}
	return s.render(ctx, template.KeyTemplateCleared, map[string]any{
		"key":   key,
		"scope": scope.String(),
	}, actor), nil
}

func unknownKey(key string) string {
	return fmt.Sprintf("Template %s does not exist.", key)
}
