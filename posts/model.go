// Package posts implements the blog post lifecycle: public reads of
// published posts, authenticated drafts listing, and owner-or-admin
// mutations with slug generation.
package posts

import (
	"time"

	"github.com/user/blog-api-go/auth"
	"github.com/user/blog-api-go/categories"
)

// Post is a blog entry. Author and Category are loaded eagerly; Category is
// nil when the post is uncategorized.
type Post struct {
	ID          int                  `json:"id"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	Slug        string               `json:"slug"`
	IsPublished bool                 `json:"isPublished"`
	AuthorID    int                  `json:"authorId"`
	CategoryID  *int                 `json:"categoryId"`
	Author      *auth.User           `json:"author,omitempty"`
	Category    *categories.Category `json:"category,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	DeletedAt   *time.Time           `json:"-"`
}

type CreatePostRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	Slug        string `json:"slug" validate:"omitempty,max=255"`
	IsPublished *bool  `json:"isPublished" validate:"omitempty"`
	CategoryID  *int   `json:"categoryId" validate:"omitempty,gt=0"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Content     *string `json:"content" validate:"omitempty"`
	Slug        *string `json:"slug" validate:"omitempty,max=255"`
	IsPublished *bool   `json:"isPublished" validate:"omitempty"`
	CategoryID  *int    `json:"categoryId" validate:"omitempty,gt=0"`
}
