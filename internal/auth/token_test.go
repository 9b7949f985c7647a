// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purerosefallen/YuzuDice/internal/auth"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

func TestHashToken(t *testing.T) {
	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := auth.HashToken("s3cret")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.True(t, auth.IsHash(hash))
	})

	t.Run("same token produces different hashes (salt)", func(t *testing.T) {
		hash1, err := auth.HashToken("same")
		require.NoError(t, err)
		hash2, err := auth.HashToken("same")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		_, err := auth.HashToken("")
		require.ErrorIs(t, err, auth.ErrEmptyToken)
	})
}

func TestVerifyHash(t *testing.T) {
	hash, err := auth.HashToken("correct")
	require.NoError(t, err)

	ok, err := auth.VerifyHash("correct", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyHash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyHash_Malformed(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"too few parts", "$argon2id$v=19"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad version", "$argon2id$version$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$memory$c2FsdA$aGFzaA"},
		{"too many threads", "$argon2id$v=19$m=65536,t=1,p=300$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad hash", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
		{"empty hash", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := auth.VerifyHash("token", tt.hash)
			require.Error(t, err)
			assert.False(t, ok)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
		})
	}
}

func TestVerifier(t *testing.T) {
	hash, err := auth.HashToken("hashed-token")
	require.NoError(t, err)

	tests := []struct {
		name      string
		secret    string
		presented string
		want      bool
	}{
		{"open accepts anything", "", "whatever", true},
		{"open accepts nothing", "", "", true},
		{"plain match", "plain", "plain", true},
		{"plain mismatch", "plain", "plane", false},
		{"plain empty", "plain", "", false},
		{"hashed match", hash, "hashed-token", true},
		{"hashed mismatch", hash, "other", false},
		{"hashed secret is not a token", hash, hash, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := auth.NewVerifier(tt.secret)
			assert.Equal(t, tt.secret == "", v.Open())
			got, err := v.Verify(tt.presented)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
