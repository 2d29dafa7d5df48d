package posts

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/config"
)

func newTestRouter(t *testing.T) (chi.Router, pgxmock.PgxPoolIface, *auth.TokenService) {
	t.Helper()
	svc, mock := newService(t)
	handlers := NewHandlers(svc)
	tokens := auth.NewTokenService(config.AuthConfig{
		JWTSecret:            "access-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	})

	r := chi.NewRouter()
	r.Mount("/posts", handlers.Routes(auth.Middleware(tokens)))
	return r, mock, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenService, userID int, role string) string {
	t.Helper()
	pair, err := tokens.GeneratePair(userID, "someone", role)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func deletePost(r chi.Router, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/posts/1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDeletePost_OwnerAllowed(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	defer mock.Close()

	// Ownership check loads the post, then the delete runs.
	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Hello", "hello", true))
	mock.ExpectExec(`UPDATE posts SET deleted_at = now\(\)`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := deletePost(r, bearerFor(t, tokens, 7, auth.RoleUser))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost_NonOwnerForbidden(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	defer mock.Close()

	// The post belongs to user 7; user 8 must be rejected without a delete.
	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Hello", "hello", true))

	rec := deletePost(r, bearerFor(t, tokens, 8, auth.RoleUser))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost_AdminSkipsOwnershipFetch(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	defer mock.Close()

	// Admins go straight to the delete without loading the post first.
	mock.ExpectExec(`UPDATE posts SET deleted_at = now\(\)`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rec := deletePost(r, bearerFor(t, tokens, 99, auth.RoleAdmin))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost_MissingPostIsNotFound(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	defer mock.Close()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(postColumns))

	rec := deletePost(r, bearerFor(t, tokens, 8, auth.RoleUser))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost_Unauthenticated(t *testing.T) {
	r, mock, _ := newTestRouter(t)
	defer mock.Close()

	rec := deletePost(r, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdatePost_NonOwnerForbidden(t *testing.T) {
	r, mock, tokens := newTestRouter(t)
	defer mock.Close()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Hello", "hello", true))

	req := httptest.NewRequest(http.MethodPatch, "/posts/1", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, 8, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
