// internal/adapters/out/memory/product_repository_mem.go
package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	pdom "storefront/internal/domain/product"
)

// ProductRepository implements product.Repository in memory.
// categories is used to populate Product.Category.
type ProductRepository struct {
	col        *Collection[pdom.Product]
	categories *CategoryRepository
}

var _ pdom.Repository = (*ProductRepository)(nil)

func NewProductRepository(categories *CategoryRepository) *ProductRepository {
	return &ProductRepository{
		col:        NewCollection(productDoc, cloneProduct, pdom.StoreField),
		categories: categories,
	}
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*pdom.Product, error) {
	p, ok := r.col.Get(strings.TrimSpace(id))
	if !ok {
		return nil, pdom.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) GetMany(_ context.Context, ids []string) (map[string]pdom.Product, error) {
	out := make(map[string]pdom.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.col.Get(id); ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *ProductRepository) Count(ctx context.Context, filter common.Filter) (int, error) {
	return r.col.Count(ctx, filter)
}

func (r *ProductRepository) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]pdom.Product, error) {
	rows, err := r.col.Find(ctx, filter, req)
	if err != nil {
		return nil, err
	}
	if req.Populates(pdom.PopulateCategory) && r.categories != nil {
		if err := r.populateCategories(ctx, rows, req.Populates(pdom.PopulateCategoryParent)); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *ProductRepository) Create(_ context.Context, p *pdom.Product) (*pdom.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if !r.col.Insert(p.ID, *p) {
		return nil, common.ErrConflict
	}
	return p, nil
}

func (r *ProductRepository) Save(_ context.Context, p *pdom.Product) error {
	if _, ok := r.col.Get(p.ID); !ok {
		return pdom.ErrNotFound
	}
	r.col.Put(p.ID, *p)
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	if !r.col.Delete(id) {
		return pdom.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) populateCategories(ctx context.Context, rows []pdom.Product, withParent bool) error {
	ids := make([]string, 0, len(rows))
	for _, p := range rows {
		if p.CategoryID != "" {
			ids = append(ids, p.CategoryID)
		}
	}
	cats, err := r.categories.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	if withParent {
		list := make([]catdom.Category, 0, len(cats))
		for _, c := range cats {
			list = append(list, c)
		}
		if err := r.categories.populateParents(ctx, list); err != nil {
			return err
		}
		for _, c := range list {
			cats[c.ID] = c
		}
	}
	for i := range rows {
		if c, ok := cats[rows[i].CategoryID]; ok {
			rows[i].Category = &c
		}
	}
	return nil
}

func productDoc(p pdom.Product) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"categoryId": p.CategoryID,
		"featured":   p.Featured,
		"priceMinor": p.Price.MinorUnits(),
		"currency":   p.Price.Currency.String(),
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}

func cloneProduct(p pdom.Product) pdom.Product {
	p.Images = append([]common.Image{}, p.Images...)
	axes := make([]pdom.VariantAxis, 0, len(p.VariantAxes))
	for _, a := range p.VariantAxes {
		axes = append(axes, pdom.VariantAxis{Name: a.Name, Options: append([]string{}, a.Options...)})
	}
	p.VariantAxes = axes
	p.Category = nil
	return p
}
