// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	pdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// collection: products, docId = product id. The price is stored both as
// {amount, currency} and as priceMinor (integer minor units) so that range
// filters and sorts work server-side.
type ProductRepositoryFS struct {
	Client     *firestore.Client
	Categories *CategoryRepositoryFS
}

var _ pdom.Repository = (*ProductRepositoryFS)(nil)

func NewProductRepositoryFS(client *firestore.Client, categories *CategoryRepositoryFS) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client, Categories: categories}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (*pdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, pdom.ErrNotFound
		}
		return nil, err
	}
	p, err := productFromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepositoryFS) GetMany(ctx context.Context, ids []string) (map[string]pdom.Product, error) {
	snaps, err := getAll(ctx, r.Client, r.col(), ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]pdom.Product, len(snaps))
	for _, s := range snaps {
		p, err := productFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepositoryFS) Count(ctx context.Context, filter common.Filter) (int, error) {
	q, residual := buildQuery(r.col().Query, filter, nil, pdom.StoreField)
	return countDocs(ctx, q, residual)
}

func (r *ProductRepositoryFS) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]pdom.Product, error) {
	q, residual := buildQuery(r.col().Query, filter, req.Sort, pdom.StoreField)
	snaps, err := findDocs(ctx, q, residual, req)
	if err != nil {
		return nil, err
	}
	out := make([]pdom.Product, 0, len(snaps))
	for _, s := range snaps {
		p, err := productFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if req.Populates(pdom.PopulateCategory) && r.Categories != nil {
		if err := r.populateCategories(ctx, out, req.Populates(pdom.PopulateCategoryParent)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p *pdom.Product) (*pdom.Product, error) {
	if p == nil {
		return nil, errors.New("product_repository_fs: product is nil")
	}
	var ref *firestore.DocumentRef
	if strings.TrimSpace(p.ID) == "" {
		ref = r.col().NewDoc()
		p.ID = ref.ID
	} else {
		ref = r.col().Doc(p.ID)
	}
	if _, err := ref.Create(ctx, productToDoc(*p)); err != nil {
		if isAlreadyExists(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepositoryFS) Save(ctx context.Context, p *pdom.Product) error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return pdom.ErrNotFound
	}
	ref := r.col().Doc(p.ID)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return pdom.ErrNotFound
		}
		return err
	}
	_, err := ref.Set(ctx, productToDoc(*p))
	return err
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pdom.ErrNotFound
	}
	ref := r.col().Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return pdom.ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *ProductRepositoryFS) populateCategories(ctx context.Context, rows []pdom.Product, withParent bool) error {
	ids := make([]string, 0, len(rows))
	for _, p := range rows {
		if p.CategoryID != "" {
			ids = append(ids, p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	cats, err := r.Categories.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	if withParent {
		list := make([]catdom.Category, 0, len(cats))
		for _, c := range cats {
			list = append(list, c)
		}
		if err := r.Categories.populateParents(ctx, list); err != nil {
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

// ========================================
// Mapping
// ========================================

type variantAxisDoc struct {
	Name    string   `firestore:"name"`
	Options []string `firestore:"options"`
}

type productDoc struct {
	ID          string           `firestore:"id"`
	Name        string           `firestore:"name"`
	Description string           `firestore:"description"`
	Price       moneyDoc         `firestore:"price"`
	PriceMinor  int64            `firestore:"priceMinor"`
	CategoryID  string           `firestore:"categoryId"`
	Variants    []variantAxisDoc `firestore:"variants"`
	Images      []common.Image   `firestore:"images"`
	Featured    bool             `firestore:"featured"`
	CreatedAt   time.Time        `firestore:"createdAt"`
	UpdatedAt   time.Time        `firestore:"updatedAt"`
}

func productToDoc(p pdom.Product) productDoc {
	axes := make([]variantAxisDoc, 0, len(p.VariantAxes))
	for _, a := range p.VariantAxes {
		axes = append(axes, variantAxisDoc{Name: a.Name, Options: a.Options})
	}
	images := p.Images
	if images == nil {
		images = []common.Image{}
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       moneyToDoc(p.Price),
		PriceMinor:  p.Price.MinorUnits(),
		CategoryID:  p.CategoryID,
		Variants:    axes,
		Images:      images,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func productFromSnapshot(snap *firestore.DocumentSnapshot) (pdom.Product, error) {
	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return pdom.Product{}, err
	}
	price, err := d.Price.toDomain()
	if err != nil {
		return pdom.Product{}, err
	}
	axes := make([]pdom.VariantAxis, 0, len(d.Variants))
	for _, a := range d.Variants {
		axes = append(axes, pdom.VariantAxis{Name: a.Name, Options: a.Options})
	}
	images := d.Images
	if images == nil {
		images = []common.Image{}
	}
	return pdom.Product{
		ID:          snap.Ref.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		CategoryID:  d.CategoryID,
		VariantAxes: axes,
		Images:      images,
		Featured:    d.Featured,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}
