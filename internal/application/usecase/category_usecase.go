// internal/application/usecase/category_usecase.go
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

// CategoryInput is the create payload for a category.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    string
}

// CategoryUsecase manages categories.
type CategoryUsecase struct {
	categories catdom.Repository
	products   pdom.Repository
	images     ImageStore
	clock      Clock
}

func NewCategoryUsecase(categories catdom.Repository, products pdom.Repository, images ImageStore) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, products: products, images: images, clock: SystemClock}
}

func (uc *CategoryUsecase) WithClock(c Clock) *CategoryUsecase {
	uc.clock = c
	return uc
}

func (uc *CategoryUsecase) List(ctx context.Context, f catdom.Filter, req common.PageRequest) (common.PageResult[catdom.Category], error) {
	return query.Paginate[catdom.Category](ctx, uc.categories, f.Exprs(), req)
}

func (uc *CategoryUsecase) Get(ctx context.Context, id string, populate ...string) (*catdom.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := common.NewPageRequest(1, 1).WithPopulate(populate...)
	if req.Populates(catdom.PopulateParent) && c.ParentID != "" {
		parent, err := uc.categories.GetByID(ctx, c.ParentID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		c.Parent = parent
	}
	return c, nil
}

func (uc *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (*catdom.Category, error) {
	c, err := catdom.New("", in.Name, in.Slug, in.Description, in.ParentID, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.checkSlugFree(ctx, c.Slug, ""); err != nil {
		return nil, err
	}
	if err := uc.checkParent(ctx, c.ParentID); err != nil {
		return nil, err
	}
	created, err := uc.categories.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "[category_usecase] category created", "categoryId", created.ID, "slug", created.Slug)
	return created, nil
}

func (uc *CategoryUsecase) Update(ctx context.Context, id string, patch catdom.Patch) (*catdom.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(patch, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.checkSlugFree(ctx, c.Slug, c.ID); err != nil {
		return nil, err
	}
	if patch.ParentID != nil {
		if err := uc.checkParent(ctx, c.ParentID); err != nil {
			return nil, err
		}
	}
	if err := uc.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete refuses while products or child categories reference the category.
func (uc *CategoryUsecase) Delete(ctx context.Context, id string) error {
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := uc.products.Count(ctx, pdom.Filter{CategoryID: c.ID}.Exprs())
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d products", catdom.ErrHasProducts, n)
	}
	children, err := uc.categories.Count(ctx, catdom.Filter{ParentID: c.ID}.Exprs())
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: %d child categories", common.ErrConflict, children)
	}

	if err := uc.categories.Delete(ctx, c.ID); err != nil {
		return err
	}
	if c.Image != nil {
		uc.deleteImage(ctx, *c.Image)
	}
	return nil
}

// SetImage uploads a new image and replaces the previous one.
func (uc *CategoryUsecase) SetImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*catdom.Category, error) {
	if uc.images == nil {
		return nil, errors.New("category_usecase: image store is not configured")
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	img, err := uc.images.Upload(ctx, "categories/"+c.ID, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	prev := c.SetImage(img, uc.clock.Now())
	if err := uc.categories.Save(ctx, c); err != nil {
		uc.deleteImage(ctx, img)
		return nil, err
	}
	if prev != nil {
		uc.deleteImage(ctx, *prev)
	}
	return c, nil
}

func (uc *CategoryUsecase) checkSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := uc.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: %q", catdom.ErrSlugConflict, slug)
	}
	return nil
}

func (uc *CategoryUsecase) checkParent(ctx context.Context, parentID string) error {
	pid := strings.TrimSpace(parentID)
	if pid == "" {
		return nil
	}
	if _, err := uc.categories.GetByID(ctx, pid); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: parent %q does not exist", catdom.ErrInvalid, pid)
		}
		return err
	}
	return nil
}

func (uc *CategoryUsecase) deleteImage(ctx context.Context, img common.Image) {
	if uc.images == nil || img.PublicID == "" {
		return
	}
	if err := uc.images.Delete(ctx, img.PublicID); err != nil {
		slog.WarnContext(ctx, "[category_usecase] image cleanup failed", "publicId", img.PublicID, "err", err)
	}
}
