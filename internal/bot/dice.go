// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot

import (
	"context"

	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/internal/template"
)

// RollOptions describes a roll. A nil Count throws one die and a nil Size
// uses Config.DefaultDiceSize. Given values must be positive.
type RollOptions struct {
	Count  *int
	Size   *int
	Reason string
}

// CheckOptions describes a percentile check. Maximum must be in (0, 100].
type CheckOptions struct {
	Maximum int
	Reason  string
}

// Roll throws dice for the actor.
func (s *Service) Roll(ctx context.Context, actor identity.Actor, opts RollOptions) (reply string, err error) {
	ctx, op := s.begin(ctx, "roll", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}

	count, size := 1, s.cfg.DefaultDiceSize
	if opts.Count != nil {
		count = *opts.Count
	}
	if opts.Size != nil {
		size = *opts.Size
	}
	if count <= 0 || size <= 0 {
		return s.badParams(ctx, op, actor), nil
	}

	data := map[string]any{
		"name":   res.DisplayName(actor.Username),
		"reason": opts.Reason,
		"count":  count,
		"size":   size,
	}
	if count > s.cfg.MaxDiceCount {
		op.outcome = OutcomeInvalid
		return s.render(ctx, template.KeyTooMuchCount, data, actor), nil
	}
	if size > s.cfg.MaxDiceSize {
		op.outcome = OutcomeInvalid
		return s.render(ctx, template.KeyTooMuchSize, data, actor), nil
	}

	roll, err := s.dice.Roll(count, size)
	if err != nil {
		return s.badParams(ctx, op, actor), nil
	}
	data["result"] = roll.Total
	data["total"] = roll.Total
	data["results"] = roll.Results
	data["formula"] = roll.Formula
	return s.render(ctx, template.KeyRoll, data, actor), nil
}

// Check draws a percentile value for the actor against opts.Maximum.
func (s *Service) Check(ctx context.Context, actor identity.Actor, opts CheckOptions) (reply string, err error) {
	ctx, op := s.begin(ctx, "check", actor)
	defer op.finish(&err)

	res, banned, err := s.resolve(ctx, op, actor)
	if err != nil || banned != "" {
		return banned, err
	}

	result, err := s.dice.Check(opts.Maximum)
	if err != nil {
		return s.badParams(ctx, op, actor), nil
	}
	return s.render(ctx, template.KeyRiskCheck, map[string]any{
		"name":    res.DisplayName(actor.Username),
		"reason":  opts.Reason,
		"maximumValue": result.Maximum,
		"maximum":      result.Maximum,
		"result":       result.Value,
		"value":        result.Value,
		"success":      result.Success,
	}, actor), nil
}
