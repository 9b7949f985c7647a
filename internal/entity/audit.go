// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package entity holds value types shared by every persisted aggregate.
package entity

import "time"

// Audit records when a row was created and last written.
// Aggregates embed it by value.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps the audit fields for a write at now.
// CreatedAt is only set the first time.
func (a *Audit) Touch(now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}
