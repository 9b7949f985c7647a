// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package template

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cbroglie/mustache"
	"github.com/samber/oops"

	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

// Resolver picks the effective template for a key and renders it.
type Resolver struct {
	repo     Repository
	registry *Registry
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil registry means Builtin().
func NewResolver(repo Repository, registry *Registry, logger *slog.Logger) *Resolver {
	if registry == nil {
		registry = Builtin()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, registry: registry, logger: logger}
}

// Registry returns the built-in table the resolver falls back to.
func (r *Resolver) Registry() *Registry { return r.registry }

// Lookup returns the effective content for key: the group override when
// groupID is set, then the global override, then the built-in default.
// Store errors are logged and treated as a miss for that tier.
func (r *Resolver) Lookup(ctx context.Context, key, groupID string) (string, Tier, bool) {
	for _, s := range overrideChain(groupID) {
		if t, ok := r.find(ctx, key, s.scope); ok {
			return t.Content, s.tier, true
		}
	}
	if content, ok := r.registry.Default(key); ok {
		return content, TierBuiltin, true
	}
	return "", "", false
}

func (r *Resolver) find(ctx context.Context, key string, scope Scope) (*Template, bool) {
	t, err := r.repo.Find(ctx, key, scope)
	switch {
	case err == nil:
		return t, true
	case errors.Is(err, ErrNotFound):
		return nil, false
	default:
		errutil.LogError(ctx, r.logger, "template lookup failed", err,
			"key", key, "scope", scope.String())
		return nil, false
	}
}

// Render resolves key and renders it against data. It never fails: when
// nothing resolves, the template is malformed, or the output is empty, it
// returns key.
func (r *Resolver) Render(ctx context.Context, key string, data any, groupID string) string {
	content, tier, ok := r.Lookup(ctx, key, groupID)
	if !ok {
		recordRenderFailure(key, failureMissing)
		r.logger.WarnContext(ctx, "no template for key", "key", key)
		return key
	}
	recordResolution(tier)

	tmpl, err := mustache.ParseString(content)
	if err != nil {
		recordRenderFailure(key, failureParse)
		r.logger.WarnContext(ctx, "template parse failed",
			"key", key, "tier", string(tier), "error", err)
		return key
	}

	out, err := tmpl.Render(data)
	if err != nil {
		recordRenderFailure(key, failureRender)
		r.logger.WarnContext(ctx, "template render failed",
			"key", key, "tier", string(tier), "error", err)
		return key
	}
	if out == "" {
		recordRenderFailure(key, failureEmpty)
		return key
	}
	return out
}

// Execute renders free-form content, such as a group's welcome message,
// against data. Unlike Render it reports failures to the caller.
func Execute(content string, data any) (string, error) {
	tmpl, err := mustache.ParseString(content)
	if err != nil {
		return "", oops.Code("TEMPLATE_PARSE_FAILED").Wrap(err)
	}
	out, err := tmpl.Render(data)
	if err != nil {
		return "", oops.Code("TEMPLATE_RENDER_FAILED").Wrap(err)
	}
	return out, nil
}
