// internal/domain/product/repository_port.go
package product

import (
	"context"

	"storefront/internal/domain/common"
)

// Repository is the product store.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetMany returns the products that exist, keyed by id.
	GetMany(ctx context.Context, ids []string) (map[string]Product, error)

	Count(ctx context.Context, filter common.Filter) (int, error)
	// Find returns one page of matching products, populating the relation
	// paths named in req.Populate ("category", "category.parent").
	Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]Product, error)

	// Create assigns an id when p.ID is empty.
	Create(ctx context.Context, p *Product) (*Product, error)
	Save(ctx context.Context, p *Product) error
	// Delete returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
