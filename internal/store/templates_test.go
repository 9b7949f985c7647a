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

	"github.com/purerosefallen/YuzuDice/internal/template"
	"github.com/purerosefallen/YuzuDice/pkg/errutil"
)

var templateCols = []string{"id", "key", "content", "created_at", "updated_at"}

func TestTemplateRepository_Find(t *testing.T) {
	id := ulid.Make()

	tests := []struct {
		name        string
		scope       template.Scope
		setupMock   func(mock pgxmock.PgxPoolIface)
		wantContent string
		wantID      ulid.ULID
		wantErr     error
	}{
		{
			name:  "group override",
			scope: template.ForGroup("g1"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM group_templates WHERE group_id = \$1 AND key = \$2`).
					WithArgs("g1", "roll").
					WillReturnRows(pgxmock.NewRows(templateCols).AddRow(id.String(), "roll", "<b>{{&name}}</b>", testNow, testNow))
			},
			wantContent: "<b>{{&name}}</b>",
			wantID:      id,
		},
		{
			name:  "global override",
			scope: template.Global(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM default_templates WHERE key = \$1`).
					WithArgs("roll").
					WillReturnRows(pgxmock.NewRows(templateCols).AddRow("", "roll", "global", testNow, testNow))
			},
			wantContent: "global",
		},
		{
			name:  "missing",
			scope: template.Global(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM default_templates`).WillReturnRows(pgxmock.NewRows(templateCols))
			},
			wantErr: template.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, err := NewTemplateRepository(mock).Find(context.Background(), "roll", tt.scope)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantContent, got.Content)
				assert.Equal(t, tt.wantID, got.ID)
				assert.Equal(t, tt.scope, got.Scope)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTemplateRepository_Find_StoreError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.ExpectQuery(`FROM group_templates`).WillReturnError(errors.New("timeout"))

	_, err = NewTemplateRepository(mock).Find(context.Background(), "roll", template.ForGroup("g1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, template.ErrNotFound)
	errutil.AssertErrorCode(t, err, "TEMPLATE_GET_FAILED")
}

func TestTemplateRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM group_templates WHERE group_id = \$1 ORDER BY key`).
		WithArgs("g1").
		WillReturnRows(pgxmock.NewRows(templateCols).
			AddRow(ulid.Make().String(), "rc", "a", testNow, testNow).
			AddRow(ulid.Make().String(), "roll", "b", testNow, testNow))

	list, err := NewTemplateRepository(mock).List(context.Background(), template.ForGroup("g1"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rc", list[0].Key)
	assert.Equal(t, "roll", list[1].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_Save(t *testing.T) {
	groupTpl := &template.Template{ID: ulid.Make(), Key: "roll", Scope: template.ForGroup("g1"), Content: "x"}
	groupTpl.Touch(testNow)
	globalTpl := &template.Template{Key: "roll", Scope: template.Global(), Content: "y"}
	globalTpl.Touch(testNow)

	tests := []struct {
		name      string
		tpl       *template.Template
		setupMock func(mock pgxmock.PgxPoolIface)
		wantCode  string
	}{
		{
			name: "group upsert",
			tpl:  groupTpl,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_templates (.+) ON CONFLICT \(group_id, key\) DO UPDATE`).
					WithArgs(groupTpl.ID.String(), "g1", "roll", "x", testNow, testNow).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "global upsert",
			tpl:  globalTpl,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO default_templates (.+) ON CONFLICT \(key\) DO UPDATE`).
					WithArgs("roll", "y", testNow, testNow).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unknown group",
			tpl:  groupTpl,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO group_templates`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
			},
			wantCode: "TEMPLATE_GROUP_MISSING",
		},
		{
			name: "database error",
			tpl:  globalTpl,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO default_templates`).WillReturnError(errors.New("boom"))
			},
			wantCode: "TEMPLATE_SAVE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			err = NewTemplateRepository(mock).Save(context.Background(), tt.tpl)
			if tt.wantCode != "" {
				errutil.AssertErrorCode(t, err, tt.wantCode)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTemplateRepository_Delete(t *testing.T) {
	t.Run("deletes group override", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec(`DELETE FROM group_templates WHERE group_id = \$1 AND key = \$2`).
			WithArgs("g1", "roll").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, NewTemplateRepository(mock).Delete(context.Background(), "roll", template.ForGroup("g1")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not set", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec(`DELETE FROM default_templates WHERE key = \$1`).
			WithArgs("roll").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = NewTemplateRepository(mock).Delete(context.Background(), "roll", template.Global())
		assert.ErrorIs(t, err, template.ErrNotFound)
		errutil.AssertErrorCode(t, err, "TEMPLATE_NOT_FOUND")
	})
}
