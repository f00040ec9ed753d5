// internal/domain/product/entity.go
package product

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/category"
	"storefront/internal/domain/common"
)

var (
	ErrNotFound        = fmt.Errorf("%w: product", common.ErrNotFound)
	ErrInvalid         = fmt.Errorf("%w: product", common.ErrInvalidInput)
	ErrImageNotFound   = fmt.Errorf("%w: product image", common.ErrNotFound)
	ErrTooManyImages   = fmt.Errorf("%w: product image limit reached", common.ErrInvalidInput)
	ErrUnknownVariant  = fmt.Errorf("%w: product variant", common.ErrInvalidInput)
	ErrCategoryMissing = fmt.Errorf("%w: product category does not exist", common.ErrInvalidInput)
)

// MaxImages bounds Product.Images.
const MaxImages = 10

// Populate paths understood by product stores.
const (
	PopulateCategory       = "category"
	PopulateCategoryParent = "category.parent"
)

// SortableFields lists the fields a product page may be sorted by.
// "price" sorts by the minor-unit amount.
var SortableFields = []string{"createdAt", "updatedAt", "name", "price"}

// StoreField maps a sortable field to the stored document field.
func StoreField(field string) string {
	if field == "price" {
		return "priceMinor"
	}
	return field
}

// VariantAxis is one customization dimension and its options.
type VariantAxis struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Product is a catalog entry.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       common.Money   `json:"price"`
	CategoryID  string         `json:"categoryId"`
	VariantAxes []VariantAxis  `json:"variants"`
	Images      []common.Image `json:"images"`
	Featured    bool           `json:"featured"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Category is filled only when "category" is populated.
	Category *category.Category `json:"category,omitempty"`
}

// New validates and builds a product.
func New(
	id, name, description string,
	price common.Money,
	categoryID string,
	axes []VariantAxis,
	featured bool,
	now time.Time,
) (*Product, error) {
	p := &Product{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		CategoryID:  strings.TrimSpace(categoryID),
		VariantAxes: normalizeAxes(axes),
		Images:      []common.Image{},
		Featured:    featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *common.Money
	CategoryID  *string
	VariantAxes *[]VariantAxis
	Featured    *bool
}

// Apply updates the product in place.
func (p *Product) Apply(patch Patch, now time.Time) error {
	next := *p
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.CategoryID != nil {
		next.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.VariantAxes != nil {
		next.VariantAxes = normalizeAxes(*patch.VariantAxes)
	}
	if patch.Featured != nil {
		next.Featured = *patch.Featured
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*p = next
	return nil
}

// AddImage appends an uploaded image.
func (p *Product) AddImage(img common.Image, now time.Time) error {
	if len(p.Images) >= MaxImages {
		return ErrTooManyImages
	}
	p.Images = append(p.Images, img)
	p.UpdatedAt = now
	return nil
}

// RemoveImage detaches the image with publicID and returns it.
func (p *Product) RemoveImage(publicID string, now time.Time) (common.Image, error) {
	for i, img := range p.Images {
		if img.PublicID == publicID {
			p.Images = append(p.Images[:i:i], p.Images[i+1:]...)
			p.UpdatedAt = now
			return img, nil
		}
	}
	return common.Image{}, ErrImageNotFound
}

// CheckVariants verifies that every selected axis and option exists on the
// product. Axes may be left unselected.
func (p *Product) CheckVariants(v cart.Variants) error {
	for axis, option := range v {
		found := false
		for _, a := range p.VariantAxes {
			if a.Name != axis {
				continue
			}
			for _, o := range a.Options {
				if o == option {
					found = true
					break
				}
			}
		}
		if !found {
			return fmt.Errorf("%w: %s=%q", ErrUnknownVariant, axis, option)
		}
	}
	return nil
}

func (p *Product) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if p.Price.Currency == (currency.Unit{}) {
		return fmt.Errorf("%w: price currency is required", ErrInvalid)
	}
	if p.Price.Amount.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	seen := map[string]struct{}{}
	for _, a := range p.VariantAxes {
		if a.Name == "" {
			return fmt.Errorf("%w: variant axis name is required", ErrInvalid)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: duplicate variant axis %q", ErrInvalid, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

func normalizeAxes(in []VariantAxis) []VariantAxis {
	out := make([]VariantAxis, 0, len(in))
	for _, a := range in {
		name := strings.TrimSpace(a.Name)
		opts := make([]string, 0, len(a.Options))
		for _, o := range a.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		out = append(out, VariantAxis{Name: name, Options: opts})
	}
	return out
}

// ========================================
// Filter
// ========================================

// Filter selects products for list pages.
type Filter struct {
	CategoryID string
	Featured   *bool
	Search     string
	MinPrice   *common.Money
	MaxPrice   *common.Money
	IDs        []string
}

// Exprs translates the filter into store expressions. Price bounds compare
// minor units.
func (f Filter) Exprs() common.Filter {
	var out common.Filter
	if id := strings.TrimSpace(f.CategoryID); id != "" {
		out = append(out, common.Eq{Field: "categoryId", Value: id})
	}
	if f.Featured != nil {
		out = append(out, common.Eq{Field: "featured", Value: *f.Featured})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		r := common.Range{Field: "priceMinor"}
		if f.MinPrice != nil {
			r.Min = f.MinPrice.MinorUnits()
		}
		if f.MaxPrice != nil {
			r.Max = f.MaxPrice.MinorUnits()
		}
		out = append(out, r)
	}
	if len(f.IDs) > 0 {
		vals := make([]any, 0, len(f.IDs))
		for _, id := range f.IDs {
			vals = append(vals, id)
		}
		out = append(out, common.In{Field: "id", Values: vals})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		out = append(out, common.Contains{Field: "name", Pattern: s})
	}
	return out
}
