package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	got, ok := UniqueViolation(pgErr)
	require.True(t, ok)
	require.Equal(t, "users_email_key", got.ConstraintName)

	wrapped := fmt.Errorf("insert failed: %w", pgErr)
	_, ok = UniqueViolation(wrapped)
	require.True(t, ok)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	require.False(t, ok, "foreign key violations are not unique violations")

	_, ok = UniqueViolation(errors.New("plain error"))
	require.False(t, ok)

	_, ok = UniqueViolation(nil)
	require.False(t, ok)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"})

	require.True(t, IsUniqueViolation(err, "slug"))
	require.False(t, IsUniqueViolation(err, "email"))
	require.False(t, IsUniqueViolation(errors.New("other"), "slug"))
}
