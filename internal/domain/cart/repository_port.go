// internal/domain/cart/repository_port.go
package cart

import (
	"context"
	"time"
)

// MutateFunc changes a cart in place. Returning an error aborts the write.
// A store may call it more than once when it retries a conflicting write,
// so it must not have side effects outside the cart.
type MutateFunc func(c *Cart) error

// MergeFunc changes both carts of a merge in place.
type MergeFunc func(from, to *Cart) error

// Repository is the cart store.
//
// Update and Merge are the only write paths. Each is a read-modify-write
// that the store serializes per document (transaction or lock), so
// concurrent mutations of one owner's cart never lose an update.
type Repository interface {
	// Get returns (nil, nil) when the owner has no cart yet.
	Get(ctx context.Context, owner OwnerKey) (*Cart, error)

	// Update loads the owner's cart, creating an empty one stamped with now
	// if none exists, applies fn and persists the result.
	Update(ctx context.Context, owner OwnerKey, now time.Time, fn MutateFunc) (*Cart, error)

	// Merge loads (or creates) both carts, applies fn and persists both.
	// It returns the destination cart.
	Merge(ctx context.Context, from, to OwnerKey, now time.Time, fn MergeFunc) (*Cart, error)
}
