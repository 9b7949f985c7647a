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

func TestService_Welcome(t *testing.T) {
	ctx := context.Background()
	newcomer := identity.Actor{UserID: "u2", Username: "Bob", GroupID: "g1"}

	t.Run("set, show and greet", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.admins["g1/u1"] = true

		got, err := f.svc.SetWelcome(ctx, aliceInGroup, "Welcome {{&name}} to {{&group.id}} &amp; have fun")
		require.NoError(t, err)
		assert.Equal(t, "Welcome message set:\nWelcome {{&name}} to {{&group.id}} & have fun", got)

		got, err = f.svc.ShowWelcome(ctx, aliceInGroup)
		require.NoError(t, err)
		assert.Equal(t, "Welcome message:\nWelcome {{&name}} to {{&group.id}} & have fun\n\n"+
			"Preview:\nWelcome Alice to g1 & have fun", got)

		msg, ok, err := f.svc.Welcome(ctx, newcomer)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Welcome Bob to g1 & have fun", msg)
	})

	t.Run("numeric entities decode like template text", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.admins["g1/u1"] = true

		_, err := f.svc.SetWelcome(ctx, aliceInGroup, "Hi &#123;&#123;&amp;name}}")
		require.NoError(t, err)

		msg, ok, err := f.svc.Welcome(ctx, newcomer)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Hi Bob", msg)
	})

	t.Run("setting needs GroupWrite or group admin", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.SetWelcome(ctx, aliceInGroup, "hi")
		require.NoError(t, err)
		assert.Equal(t, "Permission denied: change the welcome message.", got)

		f.grant("u1", access.GroupWrite)
		got, err = f.svc.SetWelcome(ctx, aliceInGroup, "hi")
		require.NoError(t, err)
		assert.Equal(t, "Welcome message set:\nhi", got)
	})

	t.Run("no message", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.ShowWelcome(ctx, aliceInGroup)
		require.NoError(t, err)
		assert.Equal(t, "This group has no welcome message.", got)

		_, ok, err := f.svc.Welcome(ctx, newcomer)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("banned newcomer is not greeted", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.mem.PutGroup(identity.Group{ID: "g1", WelcomeMessage: "hello"})
		f.mem.PutUser(identity.User{ID: "u2", BanReason: "spam"})

		_, ok, err := f.svc.Welcome(ctx, newcomer)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("broken message is not sent", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.mem.PutGroup(identity.Group{ID: "g1", WelcomeMessage: "{{#open}}never closed"})

		_, ok, err := f.svc.Welcome(ctx, newcomer)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, f.logs.String(), "welcome message failed to render")
	})

	t.Run("private chat", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		got, err := f.svc.ShowWelcome(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "This command only works inside a group.", got)
	})
}

func TestService_SetGroupAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("needs InviteBot", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.admins["g1/u1"] = true
		got, err := f.svc.SetGroupAllow(ctx, aliceInGroup, "", identity.JoinAllow)
		require.NoError(t, err)
		assert.Equal(t, "Permission denied: change the join policy.", got)
	})

	t.Run("sets another group from a private chat", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.grant("u1", access.InviteBot)
		got, err := f.svc.SetGroupAllow(ctx, alice, "g9", identity.JoinDeny)
		require.NoError(t, err)
		assert.Equal(t, "Join policy for group g9 set to deny.", got)

		g, ok := f.mem.Group("g9")
		require.True(t, ok)
		assert.Equal(t, identity.JoinDeny, g.AllowedToJoin)
		assert.Equal(t, fixedNow, g.UpdatedAt)
	})

	t.Run("needs a group", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.grant("u1", access.InviteBot)
		got, err := f.svc.SetGroupAllow(ctx, alice, "", identity.JoinAllow)
		require.NoError(t, err)
		assert.Equal(t, "Invalid parameters.", got)
	})
}

func TestService_Leave(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		perms   access.Permission
		admin   bool
		groupID string
		want    bot.LeaveResult
	}{
		{
			name: "current group without permission",
			want: bot.LeaveResult{Message: "Permission denied: dismiss the bot."},
		},
		{
			name:  "current group as group admin",
			admin: true,
			want:  bot.LeaveResult{Message: "Leaving group g1.", GroupID: "g1", Leave: true},
		},
		{
			name:    "other group as group admin",
			admin:   true,
			groupID: "g2",
			want:    bot.LeaveResult{Message: "Permission denied: dismiss the bot."},
		},
		{
			name:    "other group with DismissBot",
			perms:   access.DismissBot,
			groupID: "g2",
			want:    bot.LeaveResult{Message: "Leaving group g2.", GroupID: "g2", Leave: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, bot.DefaultConfig())
			f.grant("u1", tt.perms)
			f.admins["g1/u1"] = tt.admin

			got, err := f.svc.Leave(ctx, aliceInGroup, tt.groupID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("private chat without a target", func(t *testing.T) {
		f := newFixture(t, bot.DefaultConfig())
		f.grant("u1", access.DismissBot)
		got, err := f.svc.Leave(ctx, alice, "")
		require.NoError(t, err)
		assert.Equal(t, bot.LeaveResult{Message: "This command only works inside a group."}, got)
	})
}
