// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestErrUnknownCommand(t *testing.T) {
	err := ErrUnknownCommand("foo")
	assert.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	assert.True(t, ok)
	assert.Equal(t, "UNKNOWN_COMMAND", oopsErr.Code())
	assert.Equal(t, "foo", oopsErr.Context()["command"])
}

func TestErrInvalidArgs(t *testing.T) {
	err := ErrInvalidArgs("roll", "roll [NdM]")
	oopsErr, _ := oops.AsOops(err)
	assert.Equal(t, "INVALID_ARGS", oopsErr.Code())
	assert.Equal(t, "roll", oopsErr.Context()["command"])
	assert.Equal(t, "roll [NdM]", oopsErr.Context()["usage"])
}

func TestErrRateLimited(t *testing.T) {
	err := ErrRateLimited(1000)
	oopsErr, _ := oops.AsOops(err)
	assert.Equal(t, "RATE_LIMITED", oopsErr.Code())
	assert.Equal(t, int64(1000), oopsErr.Context()["cooldown_ms"])
}

func TestIsNotACommand(t *testing.T) {
	assert.True(t, IsNotACommand(ErrNotACommand()))
	assert.False(t, IsNotACommand(ErrUnknownCommand("x")))
	assert.False(t, IsNotACommand(errors.New("plain")))
	assert.False(t, IsNotACommand(nil))
}

func TestPlayerMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Something went wrong. Try again."},
		{"plain error", errors.New("boom"), "Something went wrong. Try again."},
		{"unknown command", ErrUnknownCommand("x"), "Unknown command. Try 'help'."},
		{"invalid args with usage", ErrInvalidArgs("rc", "rc <1-100> [reason]"), "Usage: rc <1-100> [reason]"},
		{"invalid args without usage", ErrInvalidArgs("rc", ""), "Invalid arguments."},
		{"rate limited", ErrRateLimited(500), "Too many commands. Please slow down."},
		{"empty input", oops.Code(CodeEmptyInput).Errorf("empty"), "No command given. Try 'help'."},
		{"store failure", oops.Code("USER_CREATE_FAILED").Errorf("db down"), "Something went wrong. Try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlayerMessage(tt.err))
		})
	}
}
