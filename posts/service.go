package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/categories"
	"github.com/user/blog-api-go/db"
	"github.com/user/blog-api-go/pagination"
)

const postSelect = `SELECT p.id, p.title, p.content, p.slug, p.is_published, p.author_id, p.category_id,
       p.created_at, p.updated_at,
       u.name, u.email, u.username, u.role, u.is_active, u.created_at, u.updated_at,
       c.name, c.description, c.is_active, c.created_at, c.updated_at
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN categories c ON c.id = p.category_id`

// Service implements post operations directly over the pool.
type Service struct {
	pool db.Pool
	log  *zap.Logger
}

func NewService(pool db.Pool, log *zap.Logger) *Service {
	return &Service{pool: pool, log: log}
}

// ListPublished returns a page of published posts, newest first.
func (s *Service) ListPublished(ctx context.Context, q pagination.Query) (*pagination.Page[Post], error) {
	return s.list(ctx, q, true)
}

// ListAll returns a page of all posts including drafts.
func (s *Service) ListAll(ctx context.Context, q pagination.Query) (*pagination.Page[Post], error) {
	return s.list(ctx, q, false)
}

func (s *Service) list(ctx context.Context, q pagination.Query, publishedOnly bool) (*pagination.Page[Post], error) {
	where := `WHERE p.deleted_at IS NULL`
	if publishedOnly {
		where += ` AND p.is_published = true`
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM posts p %s`, where)
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count posts", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`, postSelect, where)
	rows, err := s.pool.Query(ctx, query, q.Limit, q.Offset())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := scanPost(rows, &p); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan post", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}
	return pagination.NewPage(posts, total, q), nil
}

// Get returns a single post by id, draft or published.
func (s *Service) Get(ctx context.Context, id int) (*Post, error) {
	query := postSelect + ` WHERE p.id = $1 AND p.deleted_at IS NULL`
	var p Post
	if err := scanPost(s.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	return &p, nil
}

// GetBySlug returns a single post by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	query := postSelect + ` WHERE p.slug = $1 AND p.deleted_at IS NULL`
	var p Post
	if err := scanPost(s.pool.QueryRow(ctx, query, slug), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post with slug %q not found", slug), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get post", err)
	}
	return &p, nil
}

// Create inserts a new post authored by authorID. The slug defaults to one
// generated from the title; duplicates are rejected with a conflict error.
func (s *Service) Create(ctx context.Context, req CreatePostRequest, authorID int) (*Post, error) {
	slug := req.Slug
	if slug == "" {
		slug = GenerateSlug(req.Title)
	}
	published := false
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	var id int
	query := `INSERT INTO posts (title, content, slug, is_published, author_id, category_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	err := s.pool.QueryRow(ctx, query, req.Title, req.Content, slug, published, authorID, req.CategoryID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err, "slug") {
			return nil, apperror.NewConflictError(fmt.Sprintf("post with slug %q already exists", slug), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}
	s.log.Info("post created", zap.Int("post_id", id), zap.Int("author_id", authorID), zap.String("slug", slug))
	return s.Get(ctx, id)
}

// Update applies a partial update. Changing the title without an explicit
// slug regenerates the slug from the new title.
func (s *Service) Update(ctx context.Context, id int, req UpdatePostRequest) (*Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		p.Title = *req.Title
		if req.Slug == nil {
			p.Slug = GenerateSlug(*req.Title)
		}
	}
	if req.Slug != nil {
		p.Slug = *req.Slug
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}

	query := `UPDATE posts
	          SET title = $2, content = $3, slug = $4, is_published = $5, category_id = $6, updated_at = now()
	          WHERE id = $1 AND deleted_at IS NULL
	          RETURNING updated_at`
	if err := s.pool.QueryRow(ctx, query, p.ID, p.Title, p.Content, p.Slug, p.IsPublished, p.CategoryID).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("post with id %d not found", id), nil)
		}
		if db.IsUniqueViolation(err, "slug") {
			return nil, apperror.NewConflictError(fmt.Sprintf("post with slug %q already exists", p.Slug), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update post", err)
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the post.
func (s *Service) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE posts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("post with id %d not found", id), nil)
	}
	s.log.Info("post deleted", zap.Int("post_id", id))
	return nil
}

func scanPost(row pgx.Row, p *Post) error {
	var (
		author   auth.User
		cName    *string
		cDesc    *string
		cActive  *bool
		cCreated *time.Time
		cUpdated *time.Time
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Slug, &p.IsPublished, &p.AuthorID, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&author.Name, &author.Email, &author.Username, &author.Role, &author.IsActive,
		&author.CreatedAt, &author.UpdatedAt,
		&cName, &cDesc, &cActive, &cCreated, &cUpdated,
	)
	if err != nil {
		return err
	}
	author.ID = p.AuthorID
	p.Author = &author
	if p.CategoryID != nil && cName != nil {
		p.Category = &categories.Category{
			ID:          *p.CategoryID,
			Name:        *cName,
			Description: cDesc,
			IsActive:    cActive != nil && *cActive,
			CreatedAt:   derefTime(cCreated),
			UpdatedAt:   derefTime(cUpdated),
		}
	}
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
