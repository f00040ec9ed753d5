// internal/domain/order/entity.go
package order

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	"storefront/internal/domain/product"
)

var (
	ErrNotFound          = fmt.Errorf("%w: order", common.ErrNotFound)
	ErrInvalid           = fmt.Errorf("%w: order", common.ErrInvalidInput)
	ErrInvalidStatus     = fmt.Errorf("%w: order status", common.ErrInvalidInput)
	ErrInvalidTransition = fmt.Errorf("%w: order status transition", common.ErrInvalidInput)
	ErrEmptyCart         = fmt.Errorf("%w: cart is empty", common.ErrInvalidInput)
	ErrProductGone       = fmt.Errorf("%w: product in cart no longer exists", common.ErrInvalidInput)
)

// PopulateItemsProduct expands Item.Product with the current catalog entry.
const PopulateItemsProduct = "items.product"

// SortableFields lists the fields an order page may be sorted by.
var SortableFields = []string{"createdAt", "updatedAt", "status", "total"}

// StoreField maps a sortable field to the stored document field.
func StoreField(field string) string {
	if field == "total" {
		return "totalMinor"
	}
	return field
}

// Address is the shipping destination captured at checkout.
type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Item is the snapshot of one purchased line. Name and UnitPrice are copied
// from the product at checkout and never change afterwards.
type Item struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice common.Money  `json:"unitPrice"`
	Variants  cart.Variants `json:"selectedVariants"`
	Quantity  int           `json:"quantity"`
	LineTotal common.Money  `json:"lineTotal"`

	// Product is filled only when "items.product" is populated.
	Product *product.Product `json:"product,omitempty"`
}

// SnapshotItem copies what the order needs from the product.
func SnapshotItem(p product.Product, v cart.Variants, qty int) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Variants:  v.Clone(),
		Quantity:  qty,
		LineTotal: p.Price.Mul(qty),
	}
}

// StatusChange records one transition.
type StatusChange struct {
	From Status    `json:"from"`
	To   Status    `json:"to"`
	At   time.Time `json:"at"`
	By   string    `json:"by,omitempty"`
}

// Order is created once at checkout. Afterwards only Status (and History)
// change; orders are never deleted.
type Order struct {
	ID        string         `json:"id"`
	Owner     cart.OwnerKey  `json:"owner"`
	UserID    string         `json:"userId,omitempty"`
	Email     string         `json:"email"`
	Shipping  Address        `json:"shippingAddress"`
	Items     []Item         `json:"items"`
	Subtotal  common.Money   `json:"subtotal"`
	Total     common.Money   `json:"total"`
	Status    Status         `json:"status"`
	History   []StatusChange `json:"history"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// New builds a pending order from snapshotted items and computes totals.
func New(id string, owner cart.OwnerKey, email string, shipping Address, items []Item, note string, now time.Time) (*Order, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalid)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: email %q", ErrInvalid, email)
	}
	if err := shipping.validate(); err != nil {
		return nil, err
	}

	lines := make([]common.Money, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be positive", ErrInvalid, i)
		}
		lines = append(lines, it.LineTotal)
	}
	subtotal, err := common.Sum(items[0].UnitPrice.Currency, lines...)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:        strings.TrimSpace(id),
		Owner:     owner,
		Email:     addr.Address,
		Shipping:  shipping,
		Items:     items,
		Subtotal:  subtotal,
		Total:     subtotal,
		Status:    StatusPending,
		History:   []StatusChange{},
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !owner.IsGuest() {
		o.UserID = owner.ID()
	}
	return o, nil
}

// Transition moves the order to status to, recording who did it.
func (o *Order) Transition(to Status, by string, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.History = append(o.History, StatusChange{From: o.Status, To: to, At: now, By: by})
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// ProductIDs returns the distinct product ids of the items.
func (o *Order) ProductIDs() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}

func (a Address) validate() error {
	missing := []string{}
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: shipping address missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// ========================================
// Filter
// ========================================

// Filter selects orders for list pages.
type Filter struct {
	Owner       string
	Statuses    []Status
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Exprs translates the filter into store expressions.
func (f Filter) Exprs() common.Filter {
	var out common.Filter
	if o := strings.TrimSpace(f.Owner); o != "" {
		out = append(out, common.Eq{Field: "owner", Value: o})
	}
	if len(f.Statuses) > 0 {
		vals := make([]any, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			vals = append(vals, string(s))
		}
		out = append(out, common.In{Field: "status", Values: vals})
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		r := common.Range{Field: "createdAt"}
		if f.CreatedFrom != nil {
			r.Min = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			r.Max = *f.CreatedTo
		}
		out = append(out, r)
	}
	if e := strings.TrimSpace(f.Email); e != "" {
		out = append(out, common.Contains{Field: "email", Pattern: e})
	}
	return out
}
