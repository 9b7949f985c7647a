// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package access implements the permission bitmask model.
//
// A user's permissions are an unsigned integer built by OR-ing independent
// single-bit flags. A check passes when any of the required bits is held:
//
//	access.Has(user.Permissions, access.TemplateWrite)
//
// Group administration is not part of the bitmask. The transport reports
// whether an actor administers the current group and Authorize ORs that in.
package access

// Permission is a bitmask of capability flags.
type Permission uint32

// Has reports whether held shares at least one bit with required.
func Has(held, required Permission) bool {
	return held&required != 0
}

// Authorize reports whether an operation needing required may proceed.
// It passes when the bitmask check passes or the actor is a group admin.
func Authorize(held, required Permission, isGroupAdmin bool) bool {
	return isGroupAdmin || Has(held, required)
}

// Add returns held with the bits of p set.
func (held Permission) Add(p Permission) Permission {
	return held | p
}

// Remove returns held with the bits of p cleared.
func (held Permission) Remove(p Permission) Permission {
	return held &^ p
}
