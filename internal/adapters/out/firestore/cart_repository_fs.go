// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: owner key ("guest:<token>" or "user:<uid>")
// - fields: owner, items(array), version, createdAt, updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt".
//
// Update and Merge run inside a transaction; Firestore retries the
// function when another writer touched the same document.
type CartRepositoryFS struct {
	Client *firestore.Client
}

var _ cartdom.Repository = (*CartRepositoryFS)(nil)

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Get returns (nil, nil) if not found.
func (r *CartRepositoryFS) Get(ctx context.Context, owner cartdom.OwnerKey) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	if owner.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}

	snap, err := r.col().Doc(owner.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return cartFromSnapshot(snap, owner), nil
}

func (r *CartRepositoryFS) Update(ctx context.Context, owner cartdom.OwnerKey, now time.Time, fn cartdom.MutateFunc) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	if owner.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}

	ref := r.col().Doc(owner.String())
	var out *cartdom.Cart
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		c, err := loadCartTx(tx, ref, owner, now)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		out = c
		return tx.Set(ref, cartToDoc(c))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CartRepositoryFS) Merge(ctx context.Context, from, to cartdom.OwnerKey, now time.Time, fn cartdom.MergeFunc) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	if from.IsZero() || to.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}

	fromRef := r.col().Doc(from.String())
	toRef := r.col().Doc(to.String())
	var out *cartdom.Cart
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// all reads before any write
		src, err := loadCartTx(tx, fromRef, from, now)
		if err != nil {
			return err
		}
		dst, err := loadCartTx(tx, toRef, to, now)
		if err != nil {
			return err
		}
		if err := fn(src, dst); err != nil {
			return err
		}
		if err := tx.Set(fromRef, cartToDoc(src)); err != nil {
			return err
		}
		out = dst
		return tx.Set(toRef, cartToDoc(dst))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadCartTx(tx *firestore.Transaction, ref *firestore.DocumentRef, owner cartdom.OwnerKey, now time.Time) (*cartdom.Cart, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return cartdom.New(owner, now), nil
		}
		return nil, err
	}
	return cartFromSnapshot(snap, owner), nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Owner     string        `firestore:"owner"`
	Items     []cartItemDoc `firestore:"items"`
	Version   int64         `firestore:"version"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
	ExpiresAt time.Time     `firestore:"expiresAt"`
}

type cartItemDoc struct {
	ProductID string            `firestore:"productId"`
	Variants  map[string]string `firestore:"selectedVariants"`
	Quantity  int               `firestore:"quantity"`
}

func cartToDoc(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		v := map[string]string(it.Variants.Clone())
		items = append(items, cartItemDoc{ProductID: it.ProductID, Variants: v, Quantity: it.Quantity})
	}
	return cartDoc{
		Owner:     c.Owner.String(),
		Items:     items,
		Version:   c.Version,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
		ExpiresAt: c.ExpiresAt.UTC(),
	}
}

// cartFromSnapshot reads the raw map so that a partially written or older
// document still decodes.
func cartFromSnapshot(snap *firestore.DocumentSnapshot, owner cartdom.OwnerKey) *cartdom.Cart {
	raw := snap.Data()
	c := &cartdom.Cart{Owner: owner, Items: []cartdom.LineItem{}}
	if raw == nil {
		return c
	}

	c.Version = asInt64(raw["version"])
	if t, ok := asTime(raw["createdAt"]); ok {
		c.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		c.UpdatedAt = t
	}
	if t, ok := asTime(raw["expiresAt"]); ok {
		c.ExpiresAt = t
	}

	items, _ := raw["items"].([]any)
	for _, v := range items {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		pid := strings.TrimSpace(asString(m["productId"]))
		qty := asInt(m["quantity"])
		if pid == "" || qty <= 0 {
			continue
		}
		c.Items = append(c.Items, cartdom.LineItem{
			ProductID: pid,
			Variants:  cartdom.Variants(asStringMap(m["selectedVariants"])),
			Quantity:  qty,
		})
	}
	return c
}
