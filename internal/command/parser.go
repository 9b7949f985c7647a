// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"strings"

	"github.com/samber/oops"
)

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name string // command name (first whitespace-delimited token)
	Args string // unparsed argument string (preserves internal whitespace)
	Raw  string // original input
}

// Parse splits raw input into command name and arguments.
// The command name is the first whitespace-delimited token and is matched
// case-insensitively. Arguments preserve internal whitespace and newlines.
func Parse(input string) (*ParsedCommand, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, oops.Code(CodeEmptyInput).Errorf("no command provided")
	}

	name, args := SplitFirst(trimmed)
	return &ParsedCommand{
		Name: strings.ToLower(name),
		Args: args,
		Raw:  input,
	}, nil
}

// SplitFirst returns the first whitespace-delimited token of s and the
// remainder with its leading whitespace removed.
func SplitFirst(s string) (head, rest string) {
	s = strings.TrimLeft(s, " \t\r\n")
	idx := strings.IndexAny(s, " \t\r\n")
	if idx == -1 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx+1:], " \t\r\n")
}

// TakeFlag removes a leading occurrence of any of names from args.
func TakeFlag(args string, names ...string) (rest string, found bool) {
	head, tail := SplitFirst(args)
	for _, n := range names {
		if head == n {
			return tail, true
		}
	}
	return args, false
}
