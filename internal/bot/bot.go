// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package bot is the command facade of YuzuDice. Every operation resolves
// the acting identity, stops with the rendered ban message when anything
// in the user → group → profile cascade is banned, checks permissions,
// performs its action, and returns the reply text rendered through the
// template tiers.
//
// Operations return an error only for store failures. Everything a user
// can cause (bans, missing permissions, bad parameters) is a reply.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/dice"
	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

var tracer = otel.Tracer("yuzudice/bot")

// Config holds the tunables of the facade.
type Config struct {
	// MaxDiceCount is the largest number of dice one roll may throw.
	MaxDiceCount int
	// MaxDiceSize is the largest number of faces a die may have.
	MaxDiceSize int
	// DefaultDiceSize is used when a roll names no size.
	DefaultDiceSize int
	// KillSwitch enables banning groups and operators that kick or mute the bot.
	KillSwitch bool
	// MaxNameLength is the longest display name, in runes, after normalization.
	MaxNameLength int
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxDiceCount:    1000,
		MaxDiceSize:     1000,
		DefaultDiceSize: 6,
		MaxNameLength:   32,
	}
}

// Repositories bundles the stores the facade reads and writes.
type Repositories struct {
	Users     identity.UserRepository
	Groups    identity.GroupRepository
	Profiles  identity.ProfileRepository
	Templates template.Repository
}

// RoleChecker reports whether a user administers a group on the chat
// platform. Group administrators pass the group-scoped permission checks
// without holding the flags.
type RoleChecker interface {
	IsGroupAdmin(ctx context.Context, groupID, userID string) (bool, error)
}

// RoleCheckerFunc adapts a function to RoleChecker.
type RoleCheckerFunc func(ctx context.Context, groupID, userID string) (bool, error)

// IsGroupAdmin calls f.
func (f RoleCheckerFunc) IsGroupAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	return f(ctx, groupID, userID)
}

// Option configures a Service.
type Option func(*Service)

// WithDice replaces the dice engine.
func WithDice(engine *dice.Engine) Option {
	return func(s *Service) { s.dice = engine }
}

// WithRoleChecker sets how group administrators are recognized. Without
// one nobody is treated as a group administrator.
func WithRoleChecker(rc RoleChecker) Option {
	return func(s *Service) { s.roles = rc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the time source used for audit fields and ban reasons.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRegistry replaces the built-in template table.
func WithRegistry(reg *template.Registry) Option {
	return func(s *Service) { s.registry = reg }
}

// Service implements the bot's operations.
type Service struct {
	cfg      Config
	repos    Repositories
	dice     *dice.Engine
	roles    RoleChecker
	logger   *slog.Logger
	now      func() time.Time
	registry *template.Registry

	identities *identity.Resolver
	templates  *template.Resolver
	manager    *template.Manager
}

// New creates a Service. Unset Config fields take their DefaultConfig value.
func New(cfg Config, repos Repositories, opts ...Option) (*Service, error) {
	if repos.Users == nil || repos.Groups == nil || repos.Profiles == nil || repos.Templates == nil {
		return nil, oops.Code("BOT_CONFIG_INVALID").Errorf("all repositories are required")
	}

	s := &Service{
		cfg:    cfg.withDefaults(),
		repos:  repos,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dice == nil {
		engine, err := dice.NewSeeded()
		if err != nil {
			return nil, err
		}
		s.dice = engine
	}
	if s.registry == nil {
		s.registry = template.Builtin()
	}

	s.identities = identity.NewResolver(repos.Users, repos.Groups, repos.Profiles,
		identity.WithClock(s.now), identity.WithLogger(s.logger))
	s.templates = template.NewResolver(repos.Templates, s.registry, s.logger)
	s.manager = template.NewManager(repos.Templates, s.registry)
	return s, nil
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxDiceCount <= 0 {
		c.MaxDiceCount = def.MaxDiceCount
	}
	if c.MaxDiceSize <= 0 {
		c.MaxDiceSize = def.MaxDiceSize
	}
	if c.DefaultDiceSize <= 0 {
		c.DefaultDiceSize = def.DefaultDiceSize
	}
	if c.MaxNameLength <= 0 {
		c.MaxNameLength = def.MaxNameLength
	}
	return c
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// TemplateKeys lists every key a template can be set for.
func (s *Service) TemplateKeys() []string { return s.registry.Keys() }

// ListPermissions returns the permission names matching a glob pattern.
func (s *Service) ListPermissions(pattern string) ([]string, error) {
	return access.Match(pattern)
}

// operation tracks one facade call for tracing and metrics.
type operation struct {
	name    string
	span    trace.Span
	outcome string
	start   time.Time
}

func (s *Service) begin(ctx context.Context, name string, actor identity.Actor) (context.Context, *operation) {
	ctx, span := tracer.Start(ctx, "bot."+name, trace.WithAttributes(
		attribute.String("user.id", actor.UserID),
		attribute.String("group.id", actor.GroupID),
	))
	return ctx, &operation{name: name, span: span, outcome: OutcomeOK, start: time.Now()}
}

func (op *operation) finish(errp *error) {
	if errp != nil && *errp != nil {
		op.outcome = OutcomeError
		op.span.RecordError(*errp)
		op.span.SetStatus(codes.Error, (*errp).Error())
	}
	op.span.SetAttributes(attribute.String("outcome", op.outcome))
	op.span.End()
	recordOperation(op.name, op.outcome, time.Since(op.start))
}

// resolve runs the identity cascade. When the actor is banned the second
// return value holds the rendered ban reply.
func (s *Service) resolve(ctx context.Context, op *operation, actor identity.Actor) (identity.Resolution, string, error) {
	if actor.UserID == "" {
		return identity.Resolution{}, "", oops.Code("ACTOR_INVALID").Errorf("actor has no user id")
	}
	res, err := s.identities.Resolve(ctx, actor)
	if err != nil {
		return identity.Resolution{}, "", err
	}
	if res.Banned() {
		op.outcome = OutcomeBanned
		recordBan(res.Ban.Level)
		// Ban replies use the global tiers so a banned group cannot restyle them.
		reply := s.templates.Render(ctx, template.KeyBadUser, map[string]any{"reason": res.Ban.Reason}, "")
		return res, reply, nil
	}
	return res, "", nil
}

// authorize reports whether the actor holds required, or administers the
// current group when groupScoped is set.
func (s *Service) authorize(ctx context.Context, res identity.Resolution, actor identity.Actor, required access.Permission, groupScoped bool) (bool, error) {
	held := res.User.Permissions
	if access.Has(held, required) || !groupScoped || actor.GroupID == "" || s.roles == nil {
		return access.Authorize(held, required, false), nil
	}
	admin, err := s.roles.IsGroupAdmin(ctx, actor.GroupID, actor.UserID)
	if err != nil {
		err = oops.Code("ROLE_CHECK_FAILED").
			With("group_id", actor.GroupID).
			With("user_id", actor.UserID).
			Wrap(err)
		errutil.LogError(ctx, s.logger, "group role check", err)
		return false, err
	}
	return access.Authorize(held, required, admin), nil
}

func (s *Service) render(ctx context.Context, key string, data any, actor identity.Actor) string {
	return s.templates.Render(ctx, key, data, actor.GroupID)
}

func (s *Service) denied(ctx context.Context, op *operation, actor identity.Actor, action string) string {
	op.outcome = OutcomeDenied
	return s.render(ctx, template.KeyPermissionDenied, map[string]any{"action": action}, actor)
}

func (s *Service) badParams(ctx context.Context, op *operation, actor identity.Actor) string {
	op.outcome = OutcomeInvalid
	return s.render(ctx, template.KeyBadParams, nil, actor)
}

func (s *Service) groupOnly(ctx context.Context, op *operation, actor identity.Actor) string {
	op.outcome = OutcomeInvalid
	return s.render(ctx, template.KeyGroupOnly, nil, actor)
}
