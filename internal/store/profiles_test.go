// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purerosefallen/YuzuDice/internal/identity"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

var profileCols = []string{"id", "user_id", "group_id", "name", "ban_reason", "created_at", "updated_at"}

func TestProfileRepository_FindOrCreate(t *testing.T) {
	defaults := &identity.GroupUserProfile{ID: ulid.Make(), UserID: "u1", GroupID: "g1", Name: "Alice"}
	defaults.Touch(testNow)
	storedID := ulid.Make()

	tests := []struct {
		name        string
		setupMock   func(mock pgxmock.PgxPoolIface)
		wantCreated bool
		wantID      ulid.ULID
		wantBan     string
		wantCode    string
	}{
		{
			name: "creates",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_user_profiles`).
					WithArgs(defaults.ID.String(), "u1", "g1", "Alice", "", testNow, testNow).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectQuery(`FROM group_user_profiles WHERE user_id = \$1 AND group_id = \$2`).
					WithArgs("u1", "g1").
					WillReturnRows(pgxmock.NewRows(profileCols).
						AddRow(defaults.ID.String(), "u1", "g1", "Alice", "", testNow, testNow))
			},
			wantCreated: true,
			wantID:      defaults.ID,
		},
		{
			name: "existing keeps its id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_user_profiles`).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
				mock.ExpectQuery(`FROM group_user_profiles`).
					WithArgs("u1", "g1").
					WillReturnRows(pgxmock.NewRows(profileCols).
						AddRow(storedID.String(), "u1", "g1", "", "muted", testNow, testNow))
			},
			wantID:  storedID,
			wantBan: "muted",
		},
		{
			name: "owner missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_user_profiles`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
			},
			wantCode: "PROFILE_OWNER_MISSING",
		},
		{
			name: "insert failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_user_profiles`).WillReturnError(errors.New("refused"))
			},
			wantCode: "PROFILE_CREATE_FAILED",
		},
		{
			name: "corrupt id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_user_profiles`).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
				mock.ExpectQuery(`FROM group_user_profiles`).
					WillReturnRows(pgxmock.NewRows(profileCols).
						AddRow("not-a-ulid", "u1", "g1", "", "", testNow, testNow))
			},
			wantCode: "PROFILE_GET_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			profile, created, err := NewProfileRepository(mock).FindOrCreate(context.Background(), defaults)
			if tt.wantCode != "" {
				require.Error(t, err)
				errutil.AssertErrorContext(t, err, "group_id", "g1")
				errutil.AssertErrorCode(t, err, tt.wantCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
				assert.Equal(t, tt.wantID, profile.ID)
				assert.Equal(t, tt.wantBan, profile.BanReason)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	profile := &identity.GroupUserProfile{UserID: "u1", GroupID: "g1", Name: "Knight"}
	profile.Touch(testNow)
	mock.ExpectExec(`UPDATE group_user_profiles`).
		WithArgs("u1", "g1", "Knight", "", testNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewProfileRepository(mock).Update(context.Background(), profile))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindInGroup(t *testing.T) {
	cols := append(append([]string{}, profileCols...), "u_id", "u_name", "u_permissions", "u_ban_reason", "u_created_at", "u_updated_at")
	id := ulid.Make()

	t.Run("joins users", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM group_user_profiles p JOIN users u`).
			WithArgs("g1", "Alice", listLimit).
			WillReturnRows(pgxmock.NewRows(cols).AddRow(
				id.String(), "u1", "g1", "", "", testNow, testNow,
				"u1", "Alice", int64(2), "", testNow, testNow))

		details, err := NewProfileRepository(mock).FindInGroup(context.Background(), "g1", "Alice")
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, id, details[0].Profile.ID)
		assert.Equal(t, "Alice", details[0].DisplayName("fallback"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matches", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM group_user_profiles p JOIN users u`).
			WillReturnRows(pgxmock.NewRows(cols))

		details, err := NewProfileRepository(mock).FindInGroup(context.Background(), "g1", "nobody")
		require.NoError(t, err)
		assert.Empty(t, details)
	})
}
