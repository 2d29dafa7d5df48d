package users

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/pagination"
)

// Service implements user account operations on top of the store.
type Service struct {
	store *Store
	log   *zap.Logger
}

func NewService(store *Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create registers a new account. The password is hashed with bcrypt before
// it touches the store.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*auth.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user := &auth.User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		Username:       req.Username,
		HashedPassword: string(hashed),
		Role:           role,
		IsActive:       active,
	}
	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.Int("user_id", created.ID), zap.String("username", created.Username))
	return created, nil
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, q pagination.Query) (*pagination.Page[auth.User], error) {
	users, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(users, total, q), nil
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id int) (*auth.User, error) {
	return s.store.GetByID(ctx, id)
}

// Update applies a partial update to the user. A new password is rehashed.
func (s *Service) Update(ctx context.Context, id int, req UpdateUserRequest) (*auth.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.NewInternalError("failed to hash password", err)
		}
		user.HashedPassword = string(hashed)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	updated, err := s.store.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.Int("user_id", updated.ID))
	return updated, nil
}

// Delete soft-deletes the user.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.Int("user_id", id))
	return nil
}
