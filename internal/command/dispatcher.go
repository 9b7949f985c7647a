// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("yuzudice/command")

// Dispatcher handles prefix matching, parsing, rate limiting, and execution.
type Dispatcher struct {
	registry    *Registry
	prefixes    []string
	rateLimiter *RateLimiter // optional, can be nil
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithPrefixes sets the markers a line must start with to be a command,
// such as "." or "/". Without prefixes every line is a command.
func WithPrefixes(prefixes ...string) DispatcherOption {
	return func(d *Dispatcher) {
		d.prefixes = nil
		for _, p := range prefixes {
			if p != "" {
				d.prefixes = append(d.prefixes, p)
			}
		}
	}
}

// WithRateLimiter configures the dispatcher to use rate limiting.
// If not provided, rate limiting is disabled.
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.rateLimiter = rl
	}
}

// NewDispatcher creates a new command dispatcher. Returns an error if
// registry is nil.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	d := &Dispatcher{registry: registry}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// stripPrefix removes the first matching prefix from input.
func (d *Dispatcher) stripPrefix(input string) (string, bool) {
	if len(d.prefixes) == 0 {
		return input, true
	}
	trimmed := strings.TrimLeft(input, " \t")
	for _, p := range d.prefixes {
		if rest, ok := strings.CutPrefix(trimmed, p); ok {
			return rest, true
		}
	}
	return "", false
}

// Dispatch parses and executes a command line. Input without a configured
// prefix yields an error for which IsNotACommand is true.
func (d *Dispatcher) Dispatch(ctx context.Context, input string, exec *CommandExecution) (err error) {
	if exec.Actor.UserID == "" {
		return ErrNoUser()
	}
	if exec.Services == nil {
		return ErrNilServices()
	}

	line, ok := d.stripPrefix(input)
	if !ok {
		return ErrNotACommand()
	}

	parsed, err := Parse(line)
	if err != nil {
		return err
	}

	metrics := newMetricsRecorder()
	defer metrics.record()

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", parsed.Name),
			attribute.String("user.id", exec.Actor.UserID),
			attribute.String("group.id", exec.Actor.GroupID),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	entry, ok := d.registry.Get(parsed.Name)
	if !ok {
		metrics.status = StatusNotFound
		err = ErrUnknownCommand(parsed.Name)
		return err
	}
	metrics.command = entry.Name
	metrics.source = entry.Source
	span.SetAttributes(attribute.String("command.source", entry.Source))

	if d.rateLimiter != nil {
		allowed, cooldownMs := d.rateLimiter.Allow(exec.Actor.UserID)
		if !allowed {
			span.SetAttributes(attribute.Bool("command.rate_limited", true))
			span.SetAttributes(attribute.Int64("command.cooldown_ms", cooldownMs))
			RecordCommandRateLimited(entry.Name)
			metrics.status = StatusRateLimited
			err = ErrRateLimited(cooldownMs)
			return err
		}
	}

	exec.Args = parsed.Args
	exec.InvokedAs = parsed.Name
	err = entry.Handler(ctx, exec)
	if err != nil {
		metrics.status = StatusError
		if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() == CodeInvalidArgs {
			metrics.status = StatusInvalidArgs
		}
		slog.WarnContext(ctx, "command execution failed",
			"command", entry.Name,
			"user_id", exec.Actor.UserID,
			"group_id", exec.Actor.GroupID,
			"error", err,
		)
	}
	return err
}
