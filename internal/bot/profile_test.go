// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"plain", "Alice", "Alice", true},
		{"trimmed", "  Alice \t", "Alice", true},
		{"decomposed accent is composed", "Cafe\u0301", "Caf\u00e9", true},
		{"empty", "   ", "", false},
		{"exactly the limit", strings.Repeat("骰", 32), strings.Repeat("骰", 32), true},
		{"over the limit", strings.Repeat("a", 33), strings.Repeat("a", 33), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bot.NormalizeName(tt.in, 32)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestService_SetName(t *testing.T) {
	ctx := context.Background()

	t.Run("group name", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.SetName(ctx, aliceInGroup, " Knight ", false)
		require.NoError(t, err)
		assert.Equal(t, "Your name in this group is now Knight.", got)

		p, ok := f.mem.Profile("u1", "g1")
		require.True(t, ok)
		assert.Equal(t, "Knight", p.Name)
		assert.Equal(t, fixedNow, p.UpdatedAt)
		u, _ := f.mem.User("u1")
		assert.Equal(t, "Alice", u.Name)
	})

	t.Run("global name", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.SetName(ctx, alice, "Alicia", true)
		require.NoError(t, err)
		assert.Equal(t, "Your name is now Alicia.", got)

		u, _ := f.mem.User("u1")
		assert.Equal(t, "Alicia", u.Name)
	})

	t.Run("group name outside a group", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.SetName(ctx, alice, "Knight", false)
		require.NoError(t, err)
		assert.Equal(t, "This command only works inside a group.", got)
	})

	t.Run("name too long", func(t *testing.T) {
		f := newFixture(t, bot.Config{MaxNameLength: 4})
		got, err := f.svc.SetName(ctx, alice, "Alicia", true)
		require.NoError(t, err)
		assert.Equal(t, `Invalid name "Alicia": names must be 1 to 4 characters.`, got)

		u, _ := f.mem.User("u1")
		assert.Equal(t, "Alice", u.Name)
	})
}

func TestService_ShowProfile(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture, perms access.Permission) {
		f.mem.PutUser(identity.User{ID: "u1", Name: "Alice", Permissions: perms})
		f.mem.PutUser(identity.User{ID: "u2", Name: "Bob", BanReason: "spam"})
		f.mem.PutGroup(identity.Group{ID: "g1"})
		f.mem.PutProfile(identity.GroupUserProfile{UserID: "u1", GroupID: "g1", Name: "Knight"})
		f.mem.PutProfile(identity.GroupUserProfile{UserID: "u2", GroupID: "g1", Name: "Rogue", BanReason: "flood"})
	}

	t.Run("own group profile", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, 0)
		got, err := f.svc.ShowProfile(ctx, aliceInGroup, "", false)
		require.NoError(t, err)
		assert.Equal(t, "Knight (u1) in group g1", got)
	})

	t.Run("other group profile needs permission", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, 0)
		got, err := f.svc.ShowProfile(ctx, aliceInGroup, "Bob", false)
		require.NoError(t, err)
		assert.Equal(t, "Permission denied: view group profiles.", got)
	})

	t.Run("group admin sees other profiles", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, 0)
		f.admins["g1/u1"] = true
		got, err := f.svc.ShowProfile(ctx, aliceInGroup, "Rogue", false)
		require.NoError(t, err)
		assert.Equal(t, "Rogue (u2) in group g1\nBanned: flood", got)
	})

	t.Run("several matches are separated", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, access.GroupRead)
		f.mem.PutProfile(identity.GroupUserProfile{UserID: "u2", GroupID: "g1", Name: "Knight"})
		got, err := f.svc.ShowProfile(ctx, aliceInGroup, "Knight", false)
		require.NoError(t, err)
		assert.Equal(t, "Knight (u1) in group g1\n----------\nKnight (u2) in group g1", got)
	})

	t.Run("no group match", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, access.GroupRead)
		got, err := f.svc.ShowProfile(ctx, aliceInGroup, "Carol", false)
		require.NoError(t, err)
		assert.Equal(t, "No user matches Carol.", got)
	})

	t.Run("own global profile", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, access.GroupRead|access.InviteBot)
		got, err := f.svc.ShowProfile(ctx, alice, "", true)
		require.NoError(t, err)
		assert.Equal(t, "Alice (u1)\nPermissions: GroupRead, InviteBot", got)
	})

	t.Run("other global profile needs UserRead", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, 0)
		got, err := f.svc.ShowProfile(ctx, alice, "u2", true)
		require.NoError(t, err)
		assert.Equal(t, "Permission denied: view user profiles.", got)
	})

	t.Run("other global profile by id", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		seed(f, access.UserRead)
		got, err := f.svc.ShowProfile(ctx, alice, "u2", true)
		require.NoError(t, err)
		assert.Equal(t, "Bob (u2)\nPermissions: none\nBanned: spam", got)
	})
}
