// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package errutil holds helpers for logging and asserting oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level with any extra attrs. Oops errors have
// their code and context expanded into separate attributes so log queries
// can filter on them.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]any, 0, len(attrs)+6)
	out = append(out, attrs...)
	if oopsErr, ok := oops.AsOops(err); ok {
		out = append(out, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			out = append(out, "code", code)
		}
		if details := oopsErr.Context(); len(details) > 0 {
			out = append(out, "context", details)
		}
	} else {
		out = append(out, "error", err)
	}
	logger.ErrorContext(ctx, msg, out...)
}
