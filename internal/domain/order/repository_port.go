// internal/domain/order/repository_port.go
package order

import (
	"context"

	"storefront/internal/domain/common"
)

// Repository is the order store. There is no delete.
type Repository interface {
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Order, error)

	Count(ctx context.Context, filter common.Filter) (int, error)
	// Find returns one page of matching orders, populating "items.product"
	// when requested.
	Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]Order, error)

	// Create assigns an id when o.ID is empty.
	Create(ctx context.Context, o *Order) (*Order, error)

	// UpdateStatus runs fn against the stored order and persists the result
	// atomically. Returns ErrNotFound when the order does not exist.
	UpdateStatus(ctx context.Context, id string, fn func(o *Order) error) (*Order, error)
}
