// internal/adapters/out/memory/order_repository_mem.go
package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
)

// OrderRepository implements order.Repository in memory.
type OrderRepository struct {
	col      *Collection[odom.Order]
	products *ProductRepository
}

var _ odom.Repository = (*OrderRepository)(nil)

func NewOrderRepository(products *ProductRepository) *OrderRepository {
	return &OrderRepository{
		col:      NewCollection(orderDoc, cloneOrder, odom.StoreField),
		products: products,
	}
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*odom.Order, error) {
	o, ok := r.col.Get(strings.TrimSpace(id))
	if !ok {
		return nil, odom.ErrNotFound
	}
	return &o, nil
}

func (r *OrderRepository) Count(ctx context.Context, filter common.Filter) (int, error) {
	return r.col.Count(ctx, filter)
}

func (r *OrderRepository) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]odom.Order, error) {
	rows, err := r.col.Find(ctx, filter, req)
	if err != nil {
		return nil, err
	}
	if req.Populates(odom.PopulateItemsProduct) && r.products != nil {
		ids := []string{}
		for _, o := range rows {
			ids = append(ids, o.ProductIDs()...)
		}
		products, err := r.products.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			for j := range rows[i].Items {
				if p, ok := products[rows[i].Items[j].ProductID]; ok {
					rows[i].Items[j].Product = &p
				}
			}
		}
	}
	return rows, nil
}

func (r *OrderRepository) Create(_ context.Context, o *odom.Order) (*odom.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if !r.col.Insert(o.ID, *o) {
		return nil, common.ErrConflict
	}
	return o, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, fn func(o *odom.Order) error) (*odom.Order, error) {
	out, err := r.col.Update(strings.TrimSpace(id), func(cur odom.Order, exists bool) (odom.Order, error) {
		if !exists {
			return cur, odom.ErrNotFound
		}
		if err := fn(&cur); err != nil {
			return cur, err
		}
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func orderDoc(o odom.Order) map[string]any {
	return map[string]any{
		"id":         o.ID,
		"owner":      o.Owner.String(),
		"userId":     o.UserID,
		"email":      o.Email,
		"status":     string(o.Status),
		"totalMinor": o.Total.MinorUnits(),
		"createdAt":  o.CreatedAt,
		"updatedAt":  o.UpdatedAt,
	}
}

func cloneOrder(o odom.Order) odom.Order {
	items := make([]odom.Item, 0, len(o.Items))
	for _, it := range o.Items {
		it.Variants = it.Variants.Clone()
		it.Product = nil
		items = append(items, it)
	}
	o.Items = items
	o.History = append([]odom.StatusChange{}, o.History...)
	return o
}
