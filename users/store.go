// Package users implements account management: registration, listing,
// profile updates with password rehashing, and soft deletion. Its Store is
// the PostgreSQL credential store consumed by the auth core.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/db"
	"github.com/user/blog-api-go/pagination"
)

const userColumns = `id, name, email, username, password, role, is_active, created_at, updated_at`

// Store persists users in PostgreSQL. It implements auth.UserStore.
type Store struct {
	pool db.Pool
}

// NewStore creates a user store over the given pool.
func NewStore(pool db.Pool) *Store {
	return &Store{pool: pool}
}

var _ auth.UserStore = (*Store)(nil)

// Create inserts a new user. Unique violations on username or email are
// mapped to conflict errors.
func (s *Store) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	query := `INSERT INTO users (name, email, username, password, role, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.Username, user.HashedPassword, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err, "failed to create user")
	}
	return user, nil
}

// GetByUsername returns a non-deleted user by username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 AND deleted_at IS NULL`, userColumns)
	return s.scanUser(s.pool.QueryRow(ctx, query, username), fmt.Sprintf("user %q not found", username))
}

// GetByID returns a non-deleted user by id.
func (s *Store) GetByID(ctx context.Context, id int) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userColumns)
	return s.scanUser(s.pool.QueryRow(ctx, query, id), fmt.Sprintf("user with id %d not found", id))
}

// List returns a page of non-deleted users and the total count.
func (s *Store) List(ctx context.Context, q pagination.Query) ([]auth.User, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to count users", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`, userColumns)
	rows, err := s.pool.Query(ctx, query, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, 0, apperror.NewDatabaseError("failed to scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.NewDatabaseError("failed to list users", err)
	}
	return users, total, nil
}

// Update persists the mutable fields of user. The row must exist and not be
// soft-deleted.
func (s *Store) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	query := `UPDATE users
	          SET name = $2, email = $3, username = $4, password = $5, role = $6, is_active = $7, updated_at = now()
	          WHERE id = $1 AND deleted_at IS NULL
	          RETURNING updated_at`
	err := s.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.HashedPassword, user.Role, user.IsActive,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", user.ID), nil)
		}
		return nil, mapUniqueViolation(err, "failed to update user")
	}
	return user, nil
}

// SoftDelete marks the user as deleted without removing the row.
func (s *Store) SoftDelete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
	}
	return nil
}

func (s *Store) scanUser(row pgx.Row, notFoundMsg string) (*auth.User, error) {
	var u auth.User
	if err := scanUserRow(row, &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(notFoundMsg, nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return &u, nil
}

func scanUserRow(row pgx.Row, u *auth.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.HashedPassword,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

func mapUniqueViolation(err error, fallback string) error {
	if pgErr, ok := db.UniqueViolation(err); ok {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return apperror.NewConflictError("username already exists", nil)
		case strings.Contains(pgErr.ConstraintName, "email"):
			return apperror.NewConflictError("email already exists", nil)
		default:
			return apperror.NewConflictError("user already exists", nil)
		}
	}
	return apperror.NewDatabaseError(fallback, err)
}
