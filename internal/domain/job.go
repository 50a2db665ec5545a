package domain

import (
	"context"
	"errors"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// JobDescription is read-only from the pipeline's perspective. One active
// row acts as the default fallback when no position can be inferred.
type JobDescription struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type JobRepository interface {
	GetActive(ctx context.Context) (*JobDescription, error)
	// ActiveTitles lists active titles in deterministic (sorted) order;
	// the position matcher derives its keyword patterns from them.
	ActiveTitles(ctx context.Context) ([]string, error)
	FindByExactTitle(ctx context.Context, title string) (*JobDescription, error)
	FindByTitleKeyword(ctx context.Context, keyword string) (*JobDescription, error)
}
