package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/blog-api-go/apperror"
)

// Service orchestrates credential verification, token pair issuance and
// refresh-token exchange against a credential store.
type Service struct {
	users  UserStore
	tokens *TokenService
	log    *zap.Logger
}

// NewService constructs the auth service with its dependencies.
func NewService(users UserStore, tokens *TokenService, log *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log}
}

// Register creates a new account with the default role. The password is
// bcrypt-hashed before it reaches the store; username/email collisions come
// back from the store as conflict errors and are propagated unchanged.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:           req.Name,
		Email:          strings.ToLower(req.Email),
		Username:       req.Username,
		HashedPassword: string(hashed),
		Role:           RoleUser,
		IsActive:       true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SignIn verifies the username/password pair and returns a fresh token pair.
// Absent user, wrong password and deactivated account all fail with the same
// generic unauthorized error so callers cannot probe which usernames exist.
func (s *Service) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.log.Warn("sign-in failed: user lookup", zap.String("username", username), zap.Error(err))
		return nil, apperror.NewUnauthorizedError("invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		s.log.Warn("sign-in failed: password mismatch", zap.String("username", username))
		return nil, apperror.NewUnauthorizedError("invalid credentials", nil)
	}

	if !user.IsActive {
		s.log.Warn("sign-in failed: account deactivated", zap.String("username", username))
		return nil, apperror.NewUnauthorizedError("invalid credentials", nil)
	}

	return s.tokens.GeneratePair(user.ID, user.Username, user.Role)
}

// Refresh exchanges a valid refresh token for a fresh token pair (full
// rotation). The user is re-fetched so that deleted or deactivated accounts
// can no longer refresh, even though their token still verifies. The previous
// refresh token is not tracked server-side; it simply ages out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.log.Warn("refresh failed: token verification", zap.Error(err))
		return nil, apperror.NewUnauthorizedError("invalid or expired refresh token", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.log.Warn("refresh failed: user lookup", zap.Int("user_id", claims.UserID), zap.Error(err))
		return nil, apperror.NewUnauthorizedError("invalid or expired refresh token", nil)
	}
	if !user.IsActive {
		s.log.Warn("refresh failed: account deactivated", zap.Int("user_id", user.ID))
		return nil, apperror.NewUnauthorizedError("invalid or expired refresh token", nil)
	}

	return s.tokens.GeneratePair(user.ID, user.Username, user.Role)
}

// Profile returns the stored account for the authenticated user id.
func (s *Service) Profile(ctx context.Context, userID int) (*User, error) {
	return s.users.GetByID(ctx, userID)
}
