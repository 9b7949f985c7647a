// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package handlers

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/command"
	"github.com/purerosefallen/YuzuDice/internal/dice"
)

const (
	rollUsage  = "roll [NdM | -c N -s M] [reason]"
	checkUsage = "rc <1-100> [reason]"
)

// ParseRollArgs reads "NdM reason..." shorthand, falling back to
// "-c N -s M reason..." flags. Values not given stay nil so the bot applies
// its defaults. Given values pass through unchecked.
func ParseRollArgs(args string) (bot.RollOptions, error) {
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if spec, ok := dice.ParseShorthand(strings.ToLower(fields[0])); ok {
			return bot.RollOptions{
				Count:  &spec.Count,
				Size:   &spec.Size,
				Reason: strings.Join(fields[1:], " "),
			}, nil
		}
	}

	fs := pflag.NewFlagSet("roll", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	count := fs.IntP("count", "c", 0, "number of dice")
	size := fs.IntP("size", "s", 0, "faces per die")
	if err := fs.Parse(fields); err != nil {
		return bot.RollOptions{}, command.ErrInvalidArgs("roll", rollUsage)
	}
	opts := bot.RollOptions{Reason: strings.Join(fs.Args(), " ")}
	if fs.Changed("count") {
		opts.Count = count
	}
	if fs.Changed("size") {
		opts.Size = size
	}
	return opts, nil
}

// RollHandler throws dice.
// Usage: roll [NdM] [reason] or roll -c N -s M [reason]
func RollHandler(ctx context.Context, exec *command.CommandExecution) error {
	opts, err := ParseRollArgs(exec.Args)
	if err != nil {
		return err
	}
	msg, err := exec.Services.Bot.Roll(ctx, exec.Actor, opts)
	return reply(ctx, exec, "roll", msg, err)
}

// CheckHandler performs a percentile check.
// Usage: rc <maximum> [reason]
func CheckHandler(ctx context.Context, exec *command.CommandExecution) error {
	head, rest := command.SplitFirst(exec.Args)
	maximum, err := strconv.Atoi(head)
	if err != nil {
		return command.ErrInvalidArgs("rc", checkUsage)
	}
	msg, err := exec.Services.Bot.Check(ctx, exec.Actor, bot.CheckOptions{
		Maximum: maximum,
		Reason:  strings.TrimSpace(rest),
	})
	return reply(ctx, exec, "rc", msg, err)
}
