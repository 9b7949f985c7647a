// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package command

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

const (
	// MaxNameLength is the maximum length for command and alias names.
	MaxNameLength = 20
)

// namePattern validates command/alias names: lower-case letter first,
// followed by lower-case letters, digits, or _-.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_\-]{0,19}$`)

// ValidateCommandName validates a command name.
func ValidateCommandName(name string) error {
	return validateName(name, "command")
}

// ValidateAliasName validates an alias name.
func ValidateAliasName(name string) error {
	return validateName(name, "alias")
}

func validateName(name, kind string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return oops.Code(CodeInvalidName).
			With("kind", kind).
			Errorf("%s name cannot be empty", kind)
	}

	if len(trimmed) > MaxNameLength {
		return oops.Code(CodeInvalidName).
			With("kind", kind).
			With("length", len(trimmed)).
			With("max", MaxNameLength).
			Errorf("%s name exceeds maximum length of %d", kind, MaxNameLength)
	}

	if !namePattern.MatchString(trimmed) {
		return oops.Code(CodeInvalidName).
			With("kind", kind).
			With("name", trimmed).
			Errorf("%s name must start with a lower-case letter and contain only a-z, 0-9, _ or -", kind)
	}

	return nil
}
