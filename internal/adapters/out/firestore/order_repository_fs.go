// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// collection: orders, docId = order id. totalMinor mirrors total for sorting.
type OrderRepositoryFS struct {
	Client   *firestore.Client
	Products *ProductRepositoryFS
}

var _ odom.Repository = (*OrderRepositoryFS)(nil)

func NewOrderRepositoryFS(client *firestore.Client, products *ProductRepositoryFS) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client, Products: products}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (*odom.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, odom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, odom.ErrNotFound
		}
		return nil, err
	}
	return orderFromSnapshot(snap)
}

func (r *OrderRepositoryFS) Count(ctx context.Context, filter common.Filter) (int, error) {
	q, residual := buildQuery(r.col().Query, filter, nil, odom.StoreField)
	return countDocs(ctx, q, residual)
}

func (r *OrderRepositoryFS) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]odom.Order, error) {
	q, residual := buildQuery(r.col().Query, filter, req.Sort, odom.StoreField)
	snaps, err := findDocs(ctx, q, residual, req)
	if err != nil {
		return nil, err
	}
	out := make([]odom.Order, 0, len(snaps))
	for _, s := range snaps {
		o, err := orderFromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	if req.Populates(odom.PopulateItemsProduct) && r.Products != nil {
		ids := []string{}
		for _, o := range out {
			ids = append(ids, o.ProductIDs()...)
		}
		products, err := r.Products.GetMany(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range out {
			for j := range out[i].Items {
				if p, ok := products[out[i].Items[j].ProductID]; ok {
					out[i].Items[j].Product = &p
				}
			}
		}
	}
	return out, nil
}

func (r *OrderRepositoryFS) Create(ctx context.Context, o *odom.Order) (*odom.Order, error) {
	if o == nil {
		return nil, errors.New("order_repository_fs: order is nil")
	}
	var ref *firestore.DocumentRef
	if strings.TrimSpace(o.ID) == "" {
		ref = r.col().NewDoc()
		o.ID = ref.ID
	} else {
		ref = r.col().Doc(o.ID)
	}
	if _, err := ref.Create(ctx, orderToDoc(o)); err != nil {
		if isAlreadyExists(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	return o, nil
}

func (r *OrderRepositoryFS) UpdateStatus(ctx context.Context, id string, fn func(o *odom.Order) error) (*odom.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, odom.ErrNotFound
	}
	ref := r.col().Doc(id)

	var out *odom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return odom.ErrNotFound
			}
			return err
		}
		o, err := orderFromSnapshot(snap)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		out = o
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(o.Status)},
			{Path: "history", Value: historyToDoc(o.History)},
			{Path: "updatedAt", Value: o.UpdatedAt.UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ========================================
// Mapping
// ========================================

type addressDoc struct {
	FullName   string `firestore:"fullName"`
	Phone      string `firestore:"phone"`
	Line1      string `firestore:"line1"`
	Line2      string `firestore:"line2"`
	City       string `firestore:"city"`
	State      string `firestore:"state"`
	PostalCode string `firestore:"postalCode"`
	Country    string `firestore:"country"`
}

type orderItemDoc struct {
	ProductID string            `firestore:"productId"`
	Name      string            `firestore:"name"`
	UnitPrice moneyDoc          `firestore:"unitPrice"`
	Variants  map[string]string `firestore:"selectedVariants"`
	Quantity  int               `firestore:"quantity"`
	LineTotal moneyDoc          `firestore:"lineTotal"`
}

type statusChangeDoc struct {
	From string    `firestore:"from"`
	To   string    `firestore:"to"`
	At   time.Time `firestore:"at"`
	By   string    `firestore:"by"`
}

type orderDoc struct {
	ID         string            `firestore:"id"`
	Owner      string            `firestore:"owner"`
	UserID     string            `firestore:"userId"`
	Email      string            `firestore:"email"`
	Shipping   addressDoc        `firestore:"shippingAddress"`
	Items      []orderItemDoc    `firestore:"items"`
	Subtotal   moneyDoc          `firestore:"subtotal"`
	Total      moneyDoc          `firestore:"total"`
	TotalMinor int64             `firestore:"totalMinor"`
	Status     string            `firestore:"status"`
	History    []statusChangeDoc `firestore:"history"`
	Note       string            `firestore:"note"`
	CreatedAt  time.Time         `firestore:"createdAt"`
	UpdatedAt  time.Time         `firestore:"updatedAt"`
}

func historyToDoc(h []odom.StatusChange) []statusChangeDoc {
	out := make([]statusChangeDoc, 0, len(h))
	for _, c := range h {
		out = append(out, statusChangeDoc{From: string(c.From), To: string(c.To), At: c.At.UTC(), By: c.By})
	}
	return out
}

func orderToDoc(o *odom.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: moneyToDoc(it.UnitPrice),
			Variants:  map[string]string(it.Variants.Clone()),
			Quantity:  it.Quantity,
			LineTotal: moneyToDoc(it.LineTotal),
		})
	}
	a := o.Shipping
	return orderDoc{
		ID:     o.ID,
		Owner:  o.Owner.String(),
		UserID: o.UserID,
		Email:  o.Email,
		Shipping: addressDoc{
			FullName: a.FullName, Phone: a.Phone, Line1: a.Line1, Line2: a.Line2,
			City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		},
		Items:      items,
		Subtotal:   moneyToDoc(o.Subtotal),
		Total:      moneyToDoc(o.Total),
		TotalMinor: o.Total.MinorUnits(),
		Status:     string(o.Status),
		History:    historyToDoc(o.History),
		Note:       o.Note,
		CreatedAt:  o.CreatedAt.UTC(),
		UpdatedAt:  o.UpdatedAt.UTC(),
	}
}

func orderFromSnapshot(snap *firestore.DocumentSnapshot) (*odom.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	owner, err := cartdom.ParseOwnerKey(d.Owner)
	if err != nil {
		return nil, fmt.Errorf("order_repository_fs: order %s: %w", snap.Ref.ID, err)
	}
	subtotal, err := d.Subtotal.toDomain()
	if err != nil {
		return nil, err
	}
	total, err := d.Total.toDomain()
	if err != nil {
		return nil, err
	}

	items := make([]odom.Item, 0, len(d.Items))
	for _, it := range d.Items {
		unit, err := it.UnitPrice.toDomain()
		if err != nil {
			return nil, err
		}
		line, err := it.LineTotal.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, odom.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: unit,
			Variants:  cartdom.Variants(it.Variants),
			Quantity:  it.Quantity,
			LineTotal: line,
		})
	}

	history := make([]odom.StatusChange, 0, len(d.History))
	for _, h := range d.History {
		history = append(history, odom.StatusChange{
			From: odom.Status(h.From), To: odom.Status(h.To), At: h.At.UTC(), By: h.By,
		})
	}

	a := d.Shipping
	return &odom.Order{
		ID:     snap.Ref.ID,
		Owner:  owner,
		UserID: d.UserID,
		Email:  d.Email,
		Shipping: odom.Address{
			FullName: a.FullName, Phone: a.Phone, Line1: a.Line1, Line2: a.Line2,
			City: a.City, State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		},
		Items:     items,
		Subtotal:  subtotal,
		Total:     total,
		Status:    odom.Status(d.Status),
		History:   history,
		Note:      d.Note,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}
