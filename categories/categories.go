// Package categories implements category management. Reads are public;
// mutations are restricted to administrators.
package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
	"github.com/user/blog-api-go/db"
	"github.com/user/blog-api-go/pagination"
)

// Category groups posts under a unique name.
type Category struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty"`
	IsActive    *bool   `json:"isActive" validate:"omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty"`
	IsActive    *bool   `json:"isActive" validate:"omitempty"`
}

const categoryColumns = `id, name, description, is_active, created_at, updated_at`

// Service implements category operations directly over the pool.
type Service struct {
	pool db.Pool
	log  *zap.Logger
}

func NewService(pool db.Pool, log *zap.Logger) *Service {
	return &Service{pool: pool, log: log}
}

// List returns a page of non-deleted categories.
func (s *Service) List(ctx context.Context, q pagination.Query) (*pagination.Page[Category], error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count categories", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM categories WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`, categoryColumns)
	rows, err := s.pool.Query(ctx, query, q.Limit, q.Offset())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list categories", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list categories", err)
	}
	return pagination.NewPage(categories, total, q), nil
}

// Get returns a single category by id.
func (s *Service) Get(ctx context.Context, id int) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1 AND deleted_at IS NULL`, categoryColumns)
	var c Category
	if err := scanCategory(s.pool.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("category with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get category", err)
	}
	return &c, nil
}

// Create inserts a new category. Duplicate names are rejected with a
// conflict error.
func (s *Service) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := Category{Name: req.Name, Description: req.Description, IsActive: active}
	query := `INSERT INTO categories (name, description, is_active)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, query, c.Name, c.Description, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, apperror.NewConflictError(fmt.Sprintf("category %q already exists", req.Name), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create category", err)
	}
	s.log.Info("category created", zap.Int("category_id", c.ID), zap.String("name", c.Name))
	return &c, nil
}

// Update applies a partial update to the category.
func (s *Service) Update(ctx context.Context, id int, req UpdateCategoryRequest) (*Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	query := `UPDATE categories
	          SET name = $2, description = $3, is_active = $4, updated_at = now()
	          WHERE id = $1 AND deleted_at IS NULL
	          RETURNING updated_at`
	if err := s.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.IsActive).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("category with id %d not found", id), nil)
		}
		if db.IsUniqueViolation(err, "name") {
			return nil, apperror.NewConflictError(fmt.Sprintf("category %q already exists", c.Name), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update category", err)
	}
	return c, nil
}

// Delete soft-deletes the category. Posts referencing it keep their rows;
// the foreign key nulls out on hard removal only.
func (s *Service) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE categories SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("category with id %d not found", id), nil)
	}
	s.log.Info("category deleted", zap.Int("category_id", id))
	return nil
}

func scanCategory(row pgx.Row, c *Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}
