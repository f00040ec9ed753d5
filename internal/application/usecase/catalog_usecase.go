// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"storefront/internal/application/query"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	pdom "storefront/internal/domain/product"
)

// ProductInput is the create payload for a product.
type ProductInput struct {
	Name        string
	Description string
	Price       common.Money
	CategoryID  string
	VariantAxes []pdom.VariantAxis
	Featured    bool
}

// CatalogUsecase manages products and their images.
type CatalogUsecase struct {
	products   pdom.Repository
	categories catdom.Repository
	images     ImageStore
	clock      Clock
}

func NewCatalogUsecase(products pdom.Repository, categories catdom.Repository, images ImageStore) *CatalogUsecase {
	return &CatalogUsecase{products: products, categories: categories, images: images, clock: SystemClock}
}

// WithClock replaces the clock (tests).
func (uc *CatalogUsecase) WithClock(c Clock) *CatalogUsecase {
	uc.clock = c
	return uc
}

// ----------------------------------------
// read
// ----------------------------------------

// List returns one page of products matching f.
func (uc *CatalogUsecase) List(ctx context.Context, f pdom.Filter, req common.PageRequest) (common.PageResult[pdom.Product], error) {
	return query.Paginate[pdom.Product](ctx, uc.products, f.Exprs(), req)
}

// Get returns a product, expanding its category when populate asks for it.
func (uc *CatalogUsecase) Get(ctx context.Context, id string, populate ...string) (*pdom.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req := common.NewPageRequest(1, 1).WithPopulate(populate...)
	if !req.Populates(pdom.PopulateCategory) || p.CategoryID == "" {
		return p, nil
	}

	c, err := uc.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return p, nil
		}
		return nil, err
	}
	if req.Populates(pdom.PopulateCategoryParent) && c.ParentID != "" {
		parent, err := uc.categories.GetByID(ctx, c.ParentID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		c.Parent = parent
	}
	p.Category = c
	return p, nil
}

// ----------------------------------------
// write
// ----------------------------------------

func (uc *CatalogUsecase) Create(ctx context.Context, in ProductInput) (*pdom.Product, error) {
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	p, err := pdom.New("", in.Name, in.Description, in.Price, in.CategoryID, in.VariantAxes, in.Featured, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	created, err := uc.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "[catalog_usecase] product created", "productId", created.ID)
	return created, nil
}

func (uc *CatalogUsecase) Update(ctx context.Context, id string, patch pdom.Patch) (*pdom.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := uc.checkCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := p.Apply(patch, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the product and then its images. Image cleanup failures are
// logged, not returned.
func (uc *CatalogUsecase) Delete(ctx context.Context, id string) error {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range p.Images {
		uc.deleteImage(ctx, img)
	}
	slog.InfoContext(ctx, "[catalog_usecase] product deleted", "productId", id, "images", len(p.Images))
	return nil
}

// AttachImage uploads an image and appends it to the product.
func (uc *CatalogUsecase) AttachImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*pdom.Product, error) {
	if uc.images == nil {
		return nil, errors.New("catalog_usecase: image store is not configured")
	}
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(p.Images) >= pdom.MaxImages {
		return nil, pdom.ErrTooManyImages
	}

	img, err := uc.images.Upload(ctx, "products/"+p.ID, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	if err := p.AddImage(img, uc.clock.Now()); err != nil {
		uc.deleteImage(ctx, img)
		return nil, err
	}
	if err := uc.products.Save(ctx, p); err != nil {
		uc.deleteImage(ctx, img)
		return nil, err
	}
	return p, nil
}

// DetachImage removes an image from the product and from storage.
func (uc *CatalogUsecase) DetachImage(ctx context.Context, id, publicID string) (*pdom.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	img, err := p.RemoveImage(strings.TrimSpace(publicID), uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.products.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.deleteImage(ctx, img)
	return p, nil
}

func (uc *CatalogUsecase) checkCategory(ctx context.Context, categoryID string) error {
	cid := strings.TrimSpace(categoryID)
	if cid == "" || uc.categories == nil {
		return nil
	}
	if _, err := uc.categories.GetByID(ctx, cid); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: %q", pdom.ErrCategoryMissing, cid)
		}
		return err
	}
	return nil
}

func (uc *CatalogUsecase) deleteImage(ctx context.Context, img common.Image) {
	if uc.images == nil || img.PublicID == "" {
		return
	}
	if err := uc.images.Delete(ctx, img.PublicID); err != nil {
		slog.WarnContext(ctx, "[catalog_usecase] image cleanup failed", "publicId", img.PublicID, "err", err)
	}
}
