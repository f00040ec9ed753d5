// internal/adapters/out/memory/category_repository_mem.go
package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
)

// CategoryRepository implements category.Repository in memory.
type CategoryRepository struct {
	col *Collection[catdom.Category]
}

var _ catdom.Repository = (*CategoryRepository)(nil)

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		col: NewCollection(categoryDoc, cloneCategory, nil),
	}
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*catdom.Category, error) {
	c, ok := r.col.Get(strings.TrimSpace(id))
	if !ok {
		return nil, catdom.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) GetMany(_ context.Context, ids []string) (map[string]catdom.Category, error) {
	out := make(map[string]catdom.Category, len(ids))
	for _, id := range ids {
		if c, ok := r.col.Get(id); ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*catdom.Category, error) {
	rows, err := r.col.Find(ctx, common.Filter{common.Eq{Field: "slug", Value: slug}}, common.NewPageRequest(1, 1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, catdom.ErrNotFound
	}
	return &rows[0], nil
}

func (r *CategoryRepository) Count(ctx context.Context, filter common.Filter) (int, error) {
	return r.col.Count(ctx, filter)
}

func (r *CategoryRepository) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]catdom.Category, error) {
	rows, err := r.col.Find(ctx, filter, req)
	if err != nil {
		return nil, err
	}
	if req.Populates(catdom.PopulateParent) {
		if err := r.populateParents(ctx, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *CategoryRepository) Create(_ context.Context, c *catdom.Category) (*catdom.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if !r.col.Insert(c.ID, *c) {
		return nil, common.ErrConflict
	}
	return c, nil
}

func (r *CategoryRepository) Save(_ context.Context, c *catdom.Category) error {
	if _, ok := r.col.Get(c.ID); !ok {
		return catdom.ErrNotFound
	}
	r.col.Put(c.ID, *c)
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	if !r.col.Delete(id) {
		return catdom.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) populateParents(ctx context.Context, rows []catdom.Category) error {
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		if c.ParentID != "" {
			ids = append(ids, c.ParentID)
		}
	}
	parents, err := r.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		if p, ok := parents[rows[i].ParentID]; ok {
			rows[i].Parent = &p
		}
	}
	return nil
}

func categoryDoc(c catdom.Category) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"slug":      c.Slug,
		"parentId":  c.ParentID,
		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,
	}
}

func cloneCategory(c catdom.Category) catdom.Category {
	if c.Image != nil {
		img := *c.Image
		c.Image = &img
	}
	c.Parent = nil
	return c
}
