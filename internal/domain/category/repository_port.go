// internal/domain/category/repository_port.go
package category

import (
	"context"

	"storefront/internal/domain/common"
)

// Repository is the category store.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Category, error)
	// GetMany returns the categories that exist, keyed by id.
	GetMany(ctx context.Context, ids []string) (map[string]Category, error)
	// GetBySlug returns ErrNotFound when absent.
	GetBySlug(ctx context.Context, slug string) (*Category, error)

	Count(ctx context.Context, filter common.Filter) (int, error)
	// Find returns one page of matching categories, populating the
	// relation paths named in req.Populate.
	Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]Category, error)

	// Create assigns an id when c.ID is empty.
	Create(ctx context.Context, c *Category) (*Category, error)
	Save(ctx context.Context, c *Category) error
	// Delete returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
