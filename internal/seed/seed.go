// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package seed loads a YAML file of template overrides, group settings,
// and permission grants and applies it to the store.
//
// A seed file is validated in full against the generated JSON Schema and
// against the template registry and permission names before anything is
// written. Applying the same file twice leaves the store unchanged.
package seed

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

// File is the root of a seed document.
type File struct {
	Templates []Template `yaml:"templates,omitempty" json:"templates,omitempty" jsonschema:"description=Template overrides; omit group for a global override"`
	Groups    []Group    `yaml:"groups,omitempty" json:"groups,omitempty" jsonschema:"description=Per-group join policy and welcome message"`
	Admins    []Admin    `yaml:"admins,omitempty" json:"admins,omitempty" jsonschema:"description=Permission grants added to users"`
}

// Template overrides one template key.
type Template struct {
	Key     string `yaml:"key" json:"key" jsonschema:"minLength=1"`
	Group   string `yaml:"group,omitempty" json:"group,omitempty" jsonschema:"description=Group ID; empty means global"`
	Content string `yaml:"content" json:"content"`
}

// Group sets group-level settings. Empty fields are left as they are.
type Group struct {
	ID      string `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Allow   string `yaml:"allow,omitempty" json:"allow,omitempty" jsonschema:"enum=allow,enum=deny,enum=default"`
	Welcome string `yaml:"welcome,omitempty" json:"welcome,omitempty"`
}

// Admin grants permissions to a user. Grants are added to what the user
// already holds.
type Admin struct {
	ID          string   `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Permissions []string `yaml:"permissions" json:"permissions" jsonschema:"minItems=1"`
}

// Parse validates data against the schema, decodes it, and checks template
// keys and permission names.
func Parse(data []byte, registry *template.Registry) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, oops.Code("SEED_INVALID").Errorf("seed file is empty")
	}
	if registry == nil {
		registry = template.Builtin()
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(toJSONTypes(raw)); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}

	for i, t := range f.Templates {
		if !registry.Has(t.Key) {
			return nil, oops.Code("SEED_UNKNOWN_TEMPLATE").
				With("index", i).
				With("key", t.Key).
				Wrap(template.ErrUnknownKey)
		}
	}
	for i, a := range f.Admins {
		for _, name := range a.Permissions {
			if _, ok := access.Lookup(name); !ok {
				return nil, oops.Code("SEED_UNKNOWN_PERMISSION").
					With("index", i).
					With("permission", name).
					Errorf("unknown permission %q for user %s", name, a.ID)
			}
		}
	}
	return &f, nil
}

// Targets are the stores a seed is applied to.
type Targets struct {
	Users     identity.UserRepository
	Groups    identity.GroupRepository
	Templates *template.Manager
	Logger    *slog.Logger
	Now       func() time.Time // defaults to time.Now
}

// Report counts what Apply changed.
type Report struct {
	TemplatesSet  int
	GroupsUpdated int
	UsersUpdated  int
	Unchanged     int
}

// Apply writes f to t. Groups are created before their templates so group
// overrides always have a parent row. Records that already match are
// counted as unchanged and not rewritten.
func Apply(ctx context.Context, f *File, t Targets) (Report, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	var rep Report

	for _, g := range f.Groups {
		changed, err := applyGroup(ctx, t.Groups, g, now())
		if err != nil {
			return rep, err
		}
		rep.count(changed, &rep.GroupsUpdated)
	}

	for _, tpl := range f.Templates {
		scope := template.Global()
		if tpl.Group != "" {
			if _, _, err := t.Groups.FindOrCreate(ctx, tpl.Group); err != nil {
				return rep, oops.Code("SEED_GROUP_FAILED").With("group_id", tpl.Group).Wrap(err)
			}
			scope = template.ForGroup(tpl.Group)
		}

		current, err := t.Templates.Get(ctx, tpl.Key, scope)
		if err != nil {
			return rep, oops.Code("SEED_TEMPLATE_FAILED").With("key", tpl.Key).Wrap(err)
		}
		if current.Tier == scopeTier(scope) && current.Content == html.UnescapeString(tpl.Content) {
			rep.Unchanged++
			continue
		}
		if _, err := t.Templates.Set(ctx, tpl.Key, scope, tpl.Content); err != nil {
			return rep, oops.Code("SEED_TEMPLATE_FAILED").With("key", tpl.Key).Wrap(err)
		}
		logger.InfoContext(ctx, "seeded template", "key", tpl.Key, "scope", scope.String())
		rep.TemplatesSet++
	}

	for _, a := range f.Admins {
		changed, err := applyAdmin(ctx, t.Users, a, now())
		if err != nil {
			return rep, err
		}
		if changed {
			logger.InfoContext(ctx, "seeded permissions", "user_id", a.ID, "permissions", a.Permissions)
		}
		rep.count(changed, &rep.UsersUpdated)
	}
	return rep, nil
}

func (r *Report) count(changed bool, field *int) {
	if changed {
		*field++
		return
	}
	r.Unchanged++
}

func scopeTier(s template.Scope) template.Tier {
	if s.IsGlobal() {
		return template.TierGlobal
	}
	return template.TierGroup
}

func applyGroup(ctx context.Context, groups identity.GroupRepository, g Group, now time.Time) (bool, error) {
	group, created, err := groups.FindOrCreate(ctx, g.ID)
	if err != nil {
		return false, oops.Code("SEED_GROUP_FAILED").With("group_id", g.ID).Wrap(err)
	}

	dirty := false
	if g.Allow != "" {
		// The schema restricts Allow to parseable values.
		policy, _ := identity.ParseJoinPolicy(g.Allow)
		if group.AllowedToJoin != policy {
			group.AllowedToJoin = policy
			dirty = true
		}
	}
	if g.Welcome != "" {
		msg := html.UnescapeString(g.Welcome)
		if group.WelcomeMessage != msg {
			group.WelcomeMessage = msg
			dirty = true
		}
	}
	if !dirty {
		return created, nil
	}
	group.Touch(now)
	if err := groups.Update(ctx, group); err != nil {
		return false, oops.Code("SEED_GROUP_FAILED").With("group_id", g.ID).Wrap(err)
	}
	return true, nil
}

func applyAdmin(ctx context.Context, users identity.UserRepository, a Admin, now time.Time) (bool, error) {
	user, created, err := users.FindOrCreate(ctx, &identity.User{ID: a.ID, Name: a.Name})
	if err != nil {
		return false, oops.Code("SEED_USER_FAILED").With("user_id", a.ID).Wrap(err)
	}

	want := user.Permissions
	for _, name := range a.Permissions {
		p, _ := access.Lookup(name)
		want = want.Add(p)
	}
	dirty := want != user.Permissions
	user.Permissions = want
	if a.Name != "" && user.Name != a.Name {
		user.Name = a.Name
		dirty = true
	}
	if !dirty {
		return created, nil
	}
	user.Touch(now)
	if err := users.Update(ctx, user); err != nil {
		return false, oops.Code("SEED_USER_FAILED").With("user_id", a.ID).Wrap(err)
	}
	return true, nil
}
