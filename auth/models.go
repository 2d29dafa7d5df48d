// Package auth implements the authentication and authorization core:
// credential verification, signed token pairs with separate access/refresh
// secrets, the bearer-token middleware, and role-based route gating.
package auth

import (
	"context"
	"time"
)

// Built-in roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a stored account. HashedPassword and DeletedAt are never
// serialized into API responses.
type User struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-"`
	Role           string     `json:"role"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"-"`
}

// UserStore is the credential store boundary the auth core depends on.
// The PostgreSQL implementation lives in the users package.
type UserStore interface {
	// Create inserts a new user and returns it with ID and timestamps set.
	// Username/email collisions surface as conflict errors.
	Create(ctx context.Context, user *User) (*User, error)
	// GetByUsername returns a non-deleted user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByID returns a non-deleted user by id.
	GetByID(ctx context.Context, id int) (*User, error)
}
