package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _ := newTestService(t)
	handlers := NewHandlers(svc)

	r := chi.NewRouter()
	r.Post("/auth/register", handlers.HandleRegister())
	r.Post("/auth/login", handlers.HandleLogin())
	r.Post("/auth/refresh", handlers.HandleRefreshToken())
	r.With(Middleware(svc.tokens)).Get("/auth/profile", handlers.HandleProfile())
	return r, svc
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"name":     "Alice",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "user", got["role"])
	require.Equal(t, true, got["isActive"])
	require.NotContains(t, got, "password")
	require.Contains(t, got, "createdAt")
}

func TestHandleRegister_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"short password", map[string]any{"name": "A", "email": "a@b.com", "username": "alice", "password": "123"}},
		{"bad email", map[string]any{"name": "A", "email": "not-an-email", "username": "alice", "password": "secret123"}},
		{"short username", map[string]any{"name": "A", "email": "a@b.com", "username": "ab", "password": "secret123"}},
		{"missing name", map[string]any{"email": "a@b.com", "username": "alice", "password": "secret123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/auth/register", tc.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "username": "alice", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleRefreshToken(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "username": "alice", "password": "secret123",
	}, nil)
	rec := doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "secret123",
	}, nil)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]any{
		"refresh_token": pair.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEmpty(t, rotated.RefreshToken)

	// Missing token is a 400, not a 401.
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]any{
		"refresh_token": pair.AccessToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleProfile(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/auth/register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "username": "alice", "password": "secret123",
	}, nil)
	rec := doJSON(t, r, http.MethodPost, "/auth/login", map[string]any{
		"username": "alice", "password": "secret123",
	}, nil)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec = doJSON(t, r, http.MethodGet, "/auth/profile", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "alice", got["username"])
	require.NotContains(t, got, "password")

	rec = doJSON(t, r, http.MethodGet, "/auth/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
