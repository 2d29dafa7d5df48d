// Package pagination parses page/limit query parameters and wraps list
// results in the standard paginated envelope.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Query holds normalized pagination parameters.
type Query struct {
	// Page is 1-based.
	Page int
	// Limit is the page size, 1..100.
	Limit int
}

// Offset returns the row offset for the query.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// FromValues parses `page` and `limit` from URL query values, applying
// defaults and clamping out-of-range values instead of failing.
func FromValues(values url.Values) Query {
	q := Query{Page: defaultPage, Limit: defaultLimit}

	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			q.Page = page
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 {
			if limit > maxLimit {
				limit = maxLimit
			}
			q.Limit = limit
		}
	}
	return q
}

// Page is the envelope returned by every paginated endpoint.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage wraps items in the envelope, deriving totalPages from the total row
// count and the page size. Data is never null in the JSON output.
func NewPage[T any](items []T, total int64, q Query) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &Page[T]{
		Data:       items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}
}
