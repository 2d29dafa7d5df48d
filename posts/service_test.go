package posts

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/pagination"
)

var postColumns = []string{
	"id", "title", "content", "slug", "is_published", "author_id", "category_id",
	"created_at", "updated_at",
	"name", "email", "username", "role", "is_active", "created_at", "updated_at",
	"name", "description", "is_active", "created_at", "updated_at",
}

func newService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewService(mock, zap.NewNop()), mock
}

func postRow(id int, title, slug string, published bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(postColumns).AddRow(
		id, title, "content", slug, published, 7, nil,
		now, now,
		"Alice", "alice@example.com", "alice", auth.RoleUser, true, now, now,
		nil, nil, nil, nil, nil,
	)
}

func TestService_Get(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Hello", "hello", true))

	post, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, post.ID)
	require.Equal(t, 7, post.AuthorID)
	require.NotNil(t, post.Author)
	require.Equal(t, "alice", post.Author.Username)
	require.Nil(t, post.Category, "uncategorized post has no eager category")
}

func TestService_Get_NotFound(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Get(context.Background(), 99)
	require.True(t, apperror.IsNotFound(err))
}

func TestService_GetBySlug(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`WHERE p\.slug = \$1 AND p\.deleted_at IS NULL`).
		WithArgs("hello").
		WillReturnRows(postRow(1, "Hello", "hello", true))

	post, err := svc.GetBySlug(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", post.Slug)

	mock.ExpectQuery(`WHERE p\.slug = \$1 AND p\.deleted_at IS NULL`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = svc.GetBySlug(context.Background(), "missing")
	require.True(t, apperror.IsNotFound(err))
}

func TestService_ListPublished(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p WHERE p\.deleted_at IS NULL AND p\.is_published = true`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`WHERE p\.deleted_at IS NULL AND p\.is_published = true ORDER BY p\.created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(postRow(1, "Hello", "hello", true))

	page, err := svc.ListPublished(context.Background(), pagination.Query{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	require.True(t, page.Data[0].IsPublished)
}

func TestService_Create_GeneratesSlug(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("Meu Primeiro Post", "content", "meu-primeiro-post", false, 7, (*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Meu Primeiro Post", "meu-primeiro-post", false))

	post, err := svc.Create(context.Background(), CreatePostRequest{
		Title:   "Meu Primeiro Post",
		Content: "content",
	}, 7)
	require.NoError(t, err)
	require.Equal(t, "meu-primeiro-post", post.Slug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_DuplicateSlug(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("Hello", "content", "hello", false, 7, (*int)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"})

	_, err := svc.Create(context.Background(), CreatePostRequest{
		Title:   "Hello",
		Content: "content",
	}, 7)
	require.True(t, apperror.IsConflict(err))
}

func TestService_Update_RegeneratesSlugFromTitle(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Old Title", "old-title", false))
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs(1, "New Title", "content", "new-title", false, (*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "New Title", "new-title", false))

	title := "New Title"
	post, err := svc.Update(context.Background(), 1, UpdatePostRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "new-title", post.Slug)
}

func TestService_Update_ExplicitSlugWins(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()
	now := time.Now()

	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "Old Title", "old-title", false))
	mock.ExpectQuery(`UPDATE posts`).
		WithArgs(1, "New Title", "content", "custom-slug", false, (*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.deleted_at IS NULL`).
		WithArgs(1).
		WillReturnRows(postRow(1, "New Title", "custom-slug", false))

	title := "New Title"
	slug := "custom-slug"
	post, err := svc.Update(context.Background(), 1, UpdatePostRequest{Title: &title, Slug: &slug})
	require.NoError(t, err)
	require.Equal(t, "custom-slug", post.Slug)
}

func TestService_Delete(t *testing.T) {
	svc, mock := newService(t)
	defer mock.Close()

	mock.ExpectExec(`UPDATE posts SET deleted_at = now\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, svc.Delete(context.Background(), 1))

	mock.ExpectExec(`UPDATE posts SET deleted_at = now\(\) WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.True(t, apperror.IsNotFound(svc.Delete(context.Background(), 1)))
}
