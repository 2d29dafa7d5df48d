package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"github.com/user/blog-api-go/config"
)

const tokenIssuer = "blog-api"

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenService signs and verifies JWTs. Access and refresh tokens use
// separate HS256 secrets: the refresh secret is either configured explicitly
// or derived from the access secret (see config.AuthConfig.ResolveRefreshSecret),
// so a token signed for one purpose never verifies for the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService builds a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.ResolveRefreshSecret()),
		accessTTL:     cfg.AccessTokenDuration,
		refreshTTL:    cfg.RefreshTokenDuration,
	}
}

// GeneratePair signs the same claims payload twice, concurrently: once with
// the access secret and TTL, once with the refresh secret and TTL. Both
// signatures must succeed; a failure in either fails the whole pair.
func (s *TokenService) GeneratePair(userID int, username, role string) (*TokenPair, error) {
	var (
		g            errgroup.Group
		accessToken  string
		refreshToken string
	)

	g.Go(func() error {
		var err error
		accessToken, err = s.sign(userID, username, role, s.accessSecret, s.accessTTL)
		return err
	})
	g.Go(func() error {
		var err error
		refreshToken, err = s.sign(userID, username, role, s.refreshSecret, s.refreshTTL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// VerifyAccess validates a token against the access secret.
func (s *TokenService) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefresh validates a token against the refresh secret.
func (s *TokenService) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *TokenService) sign(userID int, username, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.UserID == 0 {
		return nil, errors.New("user_id claim is missing")
	}
	return claims, nil
}
