// internal/domain/category/entity.go
package category

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"storefront/internal/domain/common"
)

var (
	ErrNotFound     = fmt.Errorf("%w: category", common.ErrNotFound)
	ErrInvalid      = fmt.Errorf("%w: category", common.ErrInvalidInput)
	ErrHasProducts  = fmt.Errorf("%w: category still has products", common.ErrConflict)
	ErrSlugConflict = fmt.Errorf("%w: category slug already exists", common.ErrConflict)
)

// PopulateParent expands Category.Parent.
const PopulateParent = "parent"

// SortableFields lists the fields a category page may be sorted by.
var SortableFields = []string{"createdAt", "updatedAt", "name", "slug"}

// Category groups products. Categories may nest one level per ParentID.
type Category struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	ParentID    string        `json:"parentId,omitempty"`
	Image       *common.Image `json:"image,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Parent is filled only when "parent" is populated.
	Parent *Category `json:"parent,omitempty"`
}

// New validates and builds a category. An empty slug is derived from name.
func New(id, name, slug, description, parentID string, now time.Time) (*Category, error) {
	c := &Category{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Slug:        strings.TrimSpace(slug),
		Description: strings.TrimSpace(description),
		ParentID:    strings.TrimSpace(parentID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *string
}

// Apply updates the category in place.
func (c *Category) Apply(p Patch, now time.Time) error {
	next := *c
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Slug != nil {
		next.Slug = strings.TrimSpace(*p.Slug)
		if next.Slug == "" {
			next.Slug = Slugify(next.Name)
		}
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.ParentID != nil {
		next.ParentID = strings.TrimSpace(*p.ParentID)
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*c = next
	return nil
}

// SetImage replaces the image and returns the previous one, if any.
func (c *Category) SetImage(img common.Image, now time.Time) *common.Image {
	prev := c.Image
	c.Image = &img
	c.UpdatedAt = now
	return prev
}

func (c *Category) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalid)
	}
	if c.ID != "" && c.ParentID == c.ID {
		return fmt.Errorf("%w: category cannot be its own parent", ErrInvalid)
	}
	return nil
}

// Slugify lowercases s and joins runs of letters and digits with "-".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ========================================
// Filter
// ========================================

// Filter selects categories for list pages.
type Filter struct {
	// ParentID restricts to children of a category; RootsOnly to top-level ones.
	ParentID  string
	RootsOnly bool
	Search    string
	IDs       []string
}

// Exprs translates the filter into store expressions.
func (f Filter) Exprs() common.Filter {
	var out common.Filter
	switch {
	case strings.TrimSpace(f.ParentID) != "":
		out = append(out, common.Eq{Field: "parentId", Value: strings.TrimSpace(f.ParentID)})
	case f.RootsOnly:
		out = append(out, common.Eq{Field: "parentId", Value: ""})
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
