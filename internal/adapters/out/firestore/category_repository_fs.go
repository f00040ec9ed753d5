// internal/adapters/out/firestore/category_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
)

// CategoryRepositoryFS implements category.Repository using Firestore.
//
// collection: categories, docId = category id (also stored as "id" for the
// secondary sort).
type CategoryRepositoryFS struct {
	Client *firestore.Client
}

var _ catdom.Repository = (*CategoryRepositoryFS)(nil)

func NewCategoryRepositoryFS(client *firestore.Client) *CategoryRepositoryFS {
	return &CategoryRepositoryFS{Client: client}
}

func (r *CategoryRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("categories")
}

// ========================================
// Reads
// ========================================

func (r *CategoryRepositoryFS) GetByID(ctx context.Context, id string) (*catdom.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, catdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, catdom.ErrNotFound
		}
		return nil, err
	}
	c, err := categoryFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepositoryFS) GetMany(ctx context.Context, ids []string) (map[string]catdom.Category, error) {
	snaps, err := getAll(ctx, r.Client, r.col(), ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]catdom.Category, len(snaps))
	for _, s := range snaps {
		c, err := categoryFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

func (r *CategoryRepositoryFS) GetBySlug(ctx context.Context, slug string) (*catdom.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, catdom.ErrNotFound
	}
	snaps, err := collect(r.col().Where("slug", "==", slug).Limit(1).Documents(ctx))
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, catdom.ErrNotFound
	}
	c, err := categoryFromSnapshot(snaps[0])
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepositoryFS) Count(ctx context.Context, filter common.Filter) (int, error) {
	q, residual := buildQuery(r.col().Query, filter, nil, nil)
	return countDocs(ctx, q, residual)
}

func (r *CategoryRepositoryFS) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]catdom.Category, error) {
	q, residual := buildQuery(r.col().Query, filter, req.Sort, nil)
	snaps, err := findDocs(ctx, q, residual, req)
	if err != nil {
		return nil, err
	}
	out := make([]catdom.Category, 0, len(snaps))
	for _, s := range snaps {
		c, err := categoryFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if req.Populates(catdom.PopulateParent) {
		if err := r.populateParents(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ========================================
// Writes
// ========================================

func (r *CategoryRepositoryFS) Create(ctx context.Context, c *catdom.Category) (*catdom.Category, error) {
	if c == nil {
		return nil, errors.New("category_repository_fs: category is nil")
	}
	var ref *firestore.DocumentRef
	if strings.TrimSpace(c.ID) == "" {
		ref = r.col().NewDoc()
		c.ID = ref.ID
	} else {
		ref = r.col().Doc(c.ID)
	}
	if _, err := ref.Create(ctx, categoryToDoc(*c)); err != nil {
		if isAlreadyExists(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepositoryFS) Save(ctx context.Context, c *catdom.Category) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return catdom.ErrNotFound
	}
	ref := r.col().Doc(c.ID)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return catdom.ErrNotFound
		}
		return err
	}
	_, err := ref.Set(ctx, categoryToDoc(*c))
	return err
}

func (r *CategoryRepositoryFS) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.ErrNotFound
	}
	ref := r.col().Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return catdom.ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *CategoryRepositoryFS) populateParents(ctx context.Context, rows []catdom.Category) error {
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		if c.ParentID != "" {
			ids = append(ids, c.ParentID)
		}
	}
	if len(ids) == 0 {
		return nil
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

// ========================================
// Mapping
// ========================================

type categoryDoc struct {
	ID          string        `firestore:"id"`
	Name        string        `firestore:"name"`
	Slug        string        `firestore:"slug"`
	Description string        `firestore:"description"`
	ParentID    string        `firestore:"parentId"`
	Image       *common.Image `firestore:"image"`
	CreatedAt   time.Time     `firestore:"createdAt"`
	UpdatedAt   time.Time     `firestore:"updatedAt"`
}

func categoryToDoc(c catdom.Category) categoryDoc {
	return categoryDoc{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func categoryFromSnapshot(snap *firestore.DocumentSnapshot) (catdom.Category, error) {
	var d categoryDoc
	if err := snap.DataTo(&d); err != nil {
		return catdom.Category{}, err
	}
	return catdom.Category{
		// docId is the source of truth
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		ParentID:    d.ParentID,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}
