// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package identity resolves the chat actor behind a command into stored
// user, group, and per-group profile records and applies the ban cascade.
//
// Records are materialized lazily: the first command from an unknown user
// or group creates its row. Resolution checks bans in a fixed order (user,
// then group, then profile) and stops at the first one found, leaving the
// later records unresolved.
package identity

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/entity"
)

// Actor is the already-parsed sender of a command as the transport sees it.
// GroupID is empty for private messages.
type Actor struct {
	UserID   string
	Username string
	GroupID  string
}

// User is a chat account known to the bot.
type User struct {
	ID          string
	Name        string // empty until first set
	Permissions access.Permission
	BanReason   string // non-empty means banned
	entity.Audit
}

// Banned reports whether the user carries a ban reason.
func (u *User) Banned() bool { return u.BanReason != "" }

// JoinPolicy controls whether the bot accepts invitations into a group.
type JoinPolicy int

// Join policies. The zero value defers to the inviter's permissions.
const (
	JoinDeny    JoinPolicy = -1
	JoinDefault JoinPolicy = 0
	JoinAllow   JoinPolicy = 1
)

// Group is a chat group the bot has seen.
type Group struct {
	ID             string
	BanReason      string
	AllowedToJoin  JoinPolicy
	WelcomeMessage string // raw template text
	entity.Audit
}

// Banned reports whether the group carries a ban reason.
func (g *Group) Banned() bool { return g.BanReason != "" }

// GroupUserProfile is a user's override record inside one group.
type GroupUserProfile struct {
	ID        ulid.ULID
	UserID    string
	GroupID   string
	Name      string
	BanReason string
	entity.Audit
}

// Banned reports whether the profile carries a ban reason.
func (p *GroupUserProfile) Banned() bool { return p.BanReason != "" }

// ProfileDetail pairs a profile with its owning user for display.
type ProfileDetail struct {
	Profile *GroupUserProfile
	User    *User
}

// DisplayName returns the profile override, then the user's name, then fallback.
func (d ProfileDetail) DisplayName(fallback string) string {
	return displayName(d.Profile, d.User, fallback)
}

func displayName(p *GroupUserProfile, u *User, fallback string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	if u != nil && u.Name != "" {
		return u.Name
	}
	return fallback
}

// String names the policy for messages.
func (p JoinPolicy) String() string {
	switch {
	case p > 0:
		return "allow"
	case p < 0:
		return "deny"
	default:
		return "default"
	}
}

// ParseJoinPolicy accepts allow, deny, or default (case-insensitive) and
// the numeric forms 1, -1, and 0.
func ParseJoinPolicy(s string) (JoinPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow", "1", "on", "yes":
		return JoinAllow, true
	case "deny", "-1", "off", "no":
		return JoinDeny, true
	case "default", "0":
		return JoinDefault, true
	}
	return JoinDefault, false
}
