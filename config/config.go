// Package config loads and validates the application configuration from
// environment variables. Required variables, default values, and parse
// failures are collected and reported together so a misconfigured deployment
// fails fast with a complete list of problems.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds the settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds token signing secrets and lifetimes.
//
// The refresh secret is optional: deployments that configure only JWT_SECRET
// still get segregated signing keys via ResolveRefreshSecret.
type AuthConfig struct {
	// JWTSecret signs access tokens.
	JWTSecret string
	// JWTRefreshSecret signs refresh tokens. Empty means "derive from JWTSecret".
	JWTRefreshSecret string
	// AccessTokenDuration is the access token lifetime.
	AccessTokenDuration time.Duration
	// RefreshTokenDuration is the refresh token lifetime.
	RefreshTokenDuration time.Duration
}

// ResolveRefreshSecret returns the secret used to sign and verify refresh
// tokens: the dedicated JWT_REFRESH_SECRET when configured, otherwise the
// access secret with a fixed "-refresh" suffix. The fallback keeps access and
// refresh signing keys distinct without requiring two configured secrets.
func (c *AuthConfig) ResolveRefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret + "-refresh"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// SeedConfig holds credentials for the initial admin account created by the
// -seed flag.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// AppConfig is the top-level configuration structure.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	Server *ServerConfig
	Seed   *SeedConfig
}

// getRequiredEnv reads a required environment variable, collecting an error
// when it is absent.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an environment variable with a string default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an environment variable as an int, collecting an
// error and falling back to the default when parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads an environment variable as a time.Duration
// ("3600s", "15m", "168h"), collecting an error when parsing fails.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool size within sane bounds.
func clampPoolSize(size int) int {
	if size < 5 {
		return 5
	}
	if size > 100 {
		return 100
	}
	return size
}

// LoadConfig builds an AppConfig from the environment. All problems found
// while loading are returned as a single aggregated error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs))

	jwtSecret := getRequiredEnv("JWT_SECRET", &errs)
	jwtRefreshSecret := getOptionalEnv("JWT_REFRESH_SECRET", "")
	accessTokenDuration := getOptionalEnvDuration("JWT_EXPIRATION", 3600*time.Second, &errs)
	refreshTokenDuration := getOptionalEnvDuration("JWT_REFRESH_EXPIRATION", 168*time.Hour, &errs) // 7 days

	serverPort := getOptionalEnv("PORT", "3000")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB: &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			MaxSize:  poolSize,
		},
		Auth: &AuthConfig{
			JWTSecret:            jwtSecret,
			JWTRefreshSecret:     jwtRefreshSecret,
			AccessTokenDuration:  accessTokenDuration,
			RefreshTokenDuration: refreshTokenDuration,
		},
		Server: &ServerConfig{
			Port: serverPort,
		},
		Seed: &SeedConfig{
			AdminUsername: getOptionalEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:    getOptionalEnv("ADMIN_EMAIL", "admin@blog.com"),
			AdminPassword: getOptionalEnv("ADMIN_PASSWORD", "admin123"),
		},
	}, nil
}
