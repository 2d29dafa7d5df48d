package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/pagination"
)

func newDB(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewStore(mock), mock
}

func userRow(id int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "name", "email", "username", "password", "role", "is_active", "created_at", "updated_at",
	}).AddRow(id, "Alice", "alice@example.com", "alice", "$2a$10$hash", auth.RoleUser, true, now, now)
}

func TestStore_Create(t *testing.T) {
	store, mock := newDB(t)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "alice@example.com", "alice", "$2a$10$hash", auth.RoleUser, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	user, err := store.Create(context.Background(), &auth.User{
		Name: "Alice", Email: "alice@example.com", Username: "alice",
		HashedPassword: "$2a$10$hash", Role: auth.RoleUser, IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create_Conflicts(t *testing.T) {
	cases := []struct {
		constraint string
		wantMsg    string
	}{
		{"users_username_key", "username already exists"},
		{"users_email_key", "email already exists"},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			store, mock := newDB(t)
			defer mock.Close()

			mock.ExpectQuery(`INSERT INTO users`).
				WithArgs("Alice", "alice@example.com", "alice", "$2a$10$hash", auth.RoleUser, true).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			_, err := store.Create(context.Background(), &auth.User{
				Name: "Alice", Email: "alice@example.com", Username: "alice",
				HashedPassword: "$2a$10$hash", Role: auth.RoleUser, IsActive: true,
			})
			require.True(t, apperror.IsConflict(err))
			require.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestStore_GetByUsername(t *testing.T) {
	store, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND deleted_at IS NULL`).
		WithArgs("alice").
		WillReturnRows(userRow(1))

	user, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 AND deleted_at IS NULL`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetByUsername(context.Background(), "ghost")
	require.True(t, apperror.IsNotFound(err))
}

func TestStore_GetByID(t *testing.T) {
	store, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(userRow(1))

	user, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetByID(context.Background(), 99)
	require.True(t, apperror.IsNotFound(err))
}

func TestStore_List(t *testing.T) {
	store, mock := newDB(t)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "email", "username", "password", "role", "is_active", "created_at", "updated_at",
		}).
			AddRow(1, "Alice", "alice@example.com", "alice", "h", auth.RoleUser, true, now, now).
			AddRow(2, "Bob", "bob@example.com", "bob", "h", auth.RoleAdmin, true, now, now))

	users, total, err := store.List(context.Background(), pagination.Query{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SoftDelete(t *testing.T) {
	store, mock := newDB(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET deleted_at = now\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, store.SoftDelete(context.Background(), 1))

	mock.ExpectExec(`UPDATE users SET deleted_at = now\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := store.SoftDelete(context.Background(), 1)
	require.True(t, apperror.IsNotFound(err), "second delete must report not found")
}
