// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for command dispatch failures.
const (
	CodeEmptyInput     = "EMPTY_INPUT"
	CodeNotACommand    = "NOT_A_COMMAND"
	CodeUnknownCommand = "UNKNOWN_COMMAND"
	CodeInvalidArgs    = "INVALID_ARGS"
	CodeInvalidName    = "INVALID_NAME"
	CodeRateLimited    = "RATE_LIMITED"
	CodeNoUser         = "NO_USER"
	CodeNilServices    = "NIL_SERVICES"
)

// ErrNilRegistry is returned when a dispatcher is built without a registry.
var ErrNilRegistry = errors.New("command registry is required")

// ErrNotACommand creates an error for input that lacks the command prefix.
// Transports drop such input silently.
func ErrNotACommand() error {
	return oops.Code(CodeNotACommand).Errorf("input is not a command")
}

// ErrUnknownCommand creates an error for an unknown command.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrInvalidArgs creates an error for invalid arguments.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrRateLimited creates an error for rate limiting.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("Too many commands. Please slow down.")
}

// ErrNoUser creates an error when a command arrives without a sender.
func ErrNoUser() error {
	return oops.Code(CodeNoUser).
		Errorf("no user associated with command")
}

// ErrNilServices creates an error when an execution carries no services.
func ErrNilServices() error {
	return oops.Code(CodeNilServices).
		Errorf("command execution has no services")
}

// IsNotACommand reports whether err means the input should be ignored.
func IsNotACommand(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == CodeNotACommand
}

// PlayerMessage extracts a user-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeUnknownCommand:
		return "Unknown command. Try 'help'."
	case CodeInvalidArgs:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodeRateLimited:
		return "Too many commands. Please slow down."
	case CodeEmptyInput:
		return "No command given. Try 'help'."
	default:
		return "Something went wrong. Try again."
	}
}
