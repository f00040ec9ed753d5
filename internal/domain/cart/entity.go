// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/domain/common"
)

var (
	ErrInvalidCart      = fmt.Errorf("%w: cart", common.ErrInvalidInput)
	ErrLineItemNotFound = fmt.Errorf("%w: cart line item", common.ErrNotFound)
	ErrQuantityLimit    = fmt.Errorf("%w: cart line quantity exceeds limit", common.ErrInvalidInput)
)

// DefaultCartTTL is the inactivity window after which a cart document may be
// expired by the store (Firestore TTL on expiresAt).
const DefaultCartTTL = 30 * 24 * time.Hour

// Limits bounds line quantities. MaxLineQuantity <= 0 means unbounded.
type Limits struct {
	MaxLineQuantity int
}

func (l Limits) exceeded(qty int) bool {
	return l.MaxLineQuantity > 0 && qty > l.MaxLineQuantity
}

// addQuantity sums two non-negative quantities, reporting int overflow.
func addQuantity(a, b int) (int, bool) {
	if b > math.MaxInt-a {
		return math.MaxInt, false
	}
	return a + b, true
}

func (l Limits) clamp(qty int) int {
	if l.exceeded(qty) {
		return l.MaxLineQuantity
	}
	return qty
}

// LineItem is one row of a cart.
// Identity is (ProductID, Variants); Quantity is always >= 1.
type LineItem struct {
	ProductID string   `json:"productId"`
	Variants  Variants `json:"selectedVariants"`
	Quantity  int      `json:"quantity"`
}

// Matches reports whether the item has the given identity.
func (li LineItem) Matches(productID string, v Variants) bool {
	return li.ProductID == productID && EqualVariants(li.Variants, v)
}

// Cart holds the line items of one owner.
//
// Version increases on every mutation; stores use it to detect concurrent
// writers. A cart is created lazily and never deleted: checkout clears it.
type Cart struct {
	Owner     OwnerKey   `json:"owner"`
	Items     []LineItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// New returns an empty cart for owner.
func New(owner OwnerKey, now time.Time) *Cart {
	return &Cart{
		Owner:     owner,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultCartTTL),
	}
}

// AddItem merges qty into the line with the same identity, or appends a new
// line. A non-positive qty leaves the cart unchanged; validating it is the
// caller's job.
func (c *Cart) AddItem(productID string, v Variants, qty int, lim Limits, now time.Time) error {
	pid, err := c.checkIdentity(productID)
	if err != nil {
		return err
	}
	if qty <= 0 {
		return nil
	}

	if idx := c.indexOf(pid, v); idx >= 0 {
		next, ok := addQuantity(c.Items[idx].Quantity, qty)
		if !ok {
			return fmt.Errorf("%w: %d + %d overflows", ErrQuantityLimit, c.Items[idx].Quantity, qty)
		}
		if lim.exceeded(next) {
			return fmt.Errorf("%w: %d > %d", ErrQuantityLimit, next, lim.MaxLineQuantity)
		}
		c.Items[idx].Quantity = next
		c.touch(now)
		return nil
	}

	if lim.exceeded(qty) {
		return fmt.Errorf("%w: %d > %d", ErrQuantityLimit, qty, lim.MaxLineQuantity)
	}
	c.Items = append(c.Items, LineItem{ProductID: pid, Variants: v.Clone(), Quantity: qty})
	c.touch(now)
	return nil
}

// UpdateQuantity sets the absolute quantity of an existing line.
// qty <= 0 removes the line.
func (c *Cart) UpdateQuantity(productID string, v Variants, qty int, lim Limits, now time.Time) error {
	pid, err := c.checkIdentity(productID)
	if err != nil {
		return err
	}

	idx := c.indexOf(pid, v)
	if idx < 0 {
		return ErrLineItemNotFound
	}

	if qty <= 0 {
		c.Items = removeIndex(c.Items, idx)
		c.touch(now)
		return nil
	}
	if lim.exceeded(qty) {
		return fmt.Errorf("%w: %d > %d", ErrQuantityLimit, qty, lim.MaxLineQuantity)
	}

	c.Items[idx].Quantity = qty
	c.touch(now)
	return nil
}

// RemoveItem deletes the line with the given identity. Removing an absent
// line is an error, not a no-op.
func (c *Cart) RemoveItem(productID string, v Variants, now time.Time) error {
	pid, err := c.checkIdentity(productID)
	if err != nil {
		return err
	}

	idx := c.indexOf(pid, v)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	c.Items = removeIndex(c.Items, idx)
	c.touch(now)
	return nil
}

// Clear empties the cart. Always succeeds.
func (c *Cart) Clear(now time.Time) {
	c.Items = []LineItem{}
	c.touch(now)
}

// MergeFrom unions other into c, summing quantities of colliding identities.
// Sums above the limit are clamped rather than rejected so that a login
// never fails because of the guest cart.
func (c *Cart) MergeFrom(other *Cart, lim Limits, now time.Time) {
	if other == nil || len(other.Items) == 0 {
		return
	}
	for _, it := range other.Items {
		if it.Quantity <= 0 {
			continue
		}
		if idx := c.indexOf(it.ProductID, it.Variants); idx >= 0 {
			sum, _ := addQuantity(c.Items[idx].Quantity, it.Quantity)
			c.Items[idx].Quantity = lim.clamp(sum)
			continue
		}
		c.Items = append(c.Items, LineItem{
			ProductID: it.ProductID,
			Variants:  it.Variants.Clone(),
			Quantity:  lim.clamp(it.Quantity),
		})
	}
	c.touch(now)
}

// Find returns the line with the given identity.
func (c *Cart) Find(productID string, v Variants) (LineItem, bool) {
	if idx := c.indexOf(productID, v); idx >= 0 {
		return c.Items[idx], true
	}
	return LineItem{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// TotalQuantity sums all line quantities.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n, _ = addQuantity(n, it.Quantity)
	}
	return n
}

// ProductIDs returns the distinct product ids in line order.
func (c *Cart) ProductIDs() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}

// ----------------------------
// Helpers
// ----------------------------

func (c *Cart) checkIdentity(productID string) (string, error) {
	if c == nil {
		return "", ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return "", fmt.Errorf("%w: product id is required", ErrInvalidCart)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return pid, nil
}

func (c *Cart) indexOf(productID string, v Variants) int {
	for i := range c.Items {
		if c.Items[i].Matches(productID, v) {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	c.Version++
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultCartTTL)
}

func removeIndex(items []LineItem, idx int) []LineItem {
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
