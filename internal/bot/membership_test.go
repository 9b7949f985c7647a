// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package bot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purerosefallen/YuzuDice/internal/access"
	"github.com/purerosefallen/YuzuDice/internal/bot"
	"github.com/purerosefallen/YuzuDice/internal/identity"
)

func TestService_CheckJoin(t *testing.T) {
	ctx := context.Background()
	inviter := identity.Actor{UserID: "u1", GroupID: "g1"}

	tests := []struct {
		name  string
		group identity.Group
		user  identity.User
		want  bot.JoinDecision
	}{
		{"default policy, ordinary inviter", identity.Group{ID: "g1"}, identity.User{ID: "u1"}, bot.JoinIgnore},
		{"default policy, trusted inviter", identity.Group{ID: "g1"}, identity.User{ID: "u1", Permissions: access.InviteBot}, bot.JoinAccept},
		{"allowed group", identity.Group{ID: "g1", AllowedToJoin: identity.JoinAllow}, identity.User{ID: "u1"}, bot.JoinAccept},
		{"denied group beats a trusted inviter", identity.Group{ID: "g1", AllowedToJoin: identity.JoinDeny}, identity.User{ID: "u1", Permissions: access.InviteBot}, bot.JoinReject},
		{"banned group", identity.Group{ID: "g1", BanReason: "kicked", AllowedToJoin: identity.JoinAllow}, identity.User{ID: "u1"}, bot.JoinReject},
		{"banned inviter", identity.Group{ID: "g1", AllowedToJoin: identity.JoinAllow}, identity.User{ID: "u1", BanReason: "spam"}, bot.JoinReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, bot.DefaultConfig())
			f.mem.PutGroup(tt.group)
			f.mem.PutUser(tt.user)

			got, err := f.svc.CheckJoin(ctx, inviter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_KillSwitch(t *testing.T) {
	ctx := context.Background()

	t.Run("off by default", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		banned, err := f.svc.BanForKicked(ctx, "g1", "u9")
		require.NoError(t, err)
		assert.False(t, banned)
		_, ok := f.mem.Group("g1")
		assert.False(t, ok)
	})

	t.Run("kick bans group and operator", func(t *testing.T) {
		f := newFixture(t, bot.Config{KillSwitch: true})
		banned, err := f.svc.BanForKicked(ctx, "g1", "u9")
		require.NoError(t, err)
		assert.True(t, banned)

		g, _ := f.mem.Group("g1")
		assert.Equal(t, "kicked by user u9 at 2026-03-01 12:30:00", g.BanReason)
		u, _ := f.mem.User("u9")
		assert.Equal(t, "kicked the bot from group g1 at 2026-03-01 12:30:00", u.BanReason)

		got, err := f.svc.Roll(ctx, identity.Actor{UserID: "u9", Username: "Mallory"}, bot.RollOptions{})
		require.NoError(t, err)
		assert.Equal(t, "You have been banned: kicked the bot from group g1 at 2026-03-01 12:30:00", got)
	})

	t.Run("mute bans only the group", func(t *testing.T) {
		f := newFixture(t, bot.Config{KillSwitch: true})
		banned, err := f.svc.BanForMuted(ctx, "g1", "u9")
		require.NoError(t, err)
		assert.True(t, banned)

		g, _ := f.mem.Group("g1")
		assert.Equal(t, "muted by user u9 at 2026-03-01 12:30:00", g.BanReason)
		_, ok := f.mem.User("u9")
		assert.False(t, ok)
	})

	t.Run("group id is required", func(t *testing.T) {
		f := newFixture(t, bot.Config{KillSwitch: true})
		_, err := f.svc.BanForMuted(ctx, "", "u9")
		require.Error(t, err)
	})
}
