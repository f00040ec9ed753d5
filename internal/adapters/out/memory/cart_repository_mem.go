// internal/adapters/out/memory/cart_repository_mem.go
package memory

import (
	"context"
	"time"

	cartdom "storefront/internal/domain/cart"
)

// CartRepository implements cart.Repository in memory. All writes go through
// the collection's lock, so mutations of one cart are serialized.
type CartRepository struct {
	col *Collection[cartdom.Cart]
}

var _ cartdom.Repository = (*CartRepository)(nil)

func NewCartRepository() *CartRepository {
	return &CartRepository{
		col: NewCollection(cartDoc, cloneCart, nil),
	}
}

func (r *CartRepository) Get(_ context.Context, owner cartdom.OwnerKey) (*cartdom.Cart, error) {
	if owner.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}
	c, ok := r.col.Get(owner.String())
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CartRepository) Update(ctx context.Context, owner cartdom.OwnerKey, now time.Time, fn cartdom.MutateFunc) (*cartdom.Cart, error) {
	if owner.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.col.Update(owner.String(), func(cur cartdom.Cart, exists bool) (cartdom.Cart, error) {
		c := &cur
		if !exists {
			c = cartdom.New(owner, now)
		}
		if err := fn(c); err != nil {
			return cur, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CartRepository) Merge(ctx context.Context, from, to cartdom.OwnerKey, now time.Time, fn cartdom.MergeFunc) (*cartdom.Cart, error) {
	if from.IsZero() || to.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result cartdom.Cart
	err := r.col.Lock(func(items map[string]cartdom.Cart) error {
		src := loadOrNew(items, from, now)
		dst := loadOrNew(items, to, now)
		if err := fn(src, dst); err != nil {
			return err
		}
		items[from.String()] = cloneCart(*src)
		items[to.String()] = cloneCart(*dst)
		result = cloneCart(*dst)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func loadOrNew(items map[string]cartdom.Cart, owner cartdom.OwnerKey, now time.Time) *cartdom.Cart {
	if c, ok := items[owner.String()]; ok {
		cp := cloneCart(c)
		return &cp
	}
	return cartdom.New(owner, now)
}

func cartDoc(c cartdom.Cart) map[string]any {
	return map[string]any{
		"owner":     c.Owner.String(),
		"version":   c.Version,
		"updatedAt": c.UpdatedAt,
		"createdAt": c.CreatedAt,
	}
}

func cloneCart(c cartdom.Cart) cartdom.Cart {
	items := make([]cartdom.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		it.Variants = it.Variants.Clone()
		items = append(items, it)
	}
	c.Items = items
	return c
}
