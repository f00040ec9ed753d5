// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/application/query"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

var (
	ErrCheckoutInProgress = fmt.Errorf("%w: checkout with this idempotency key is in progress", common.ErrConflict)
	ErrCartChanged        = fmt.Errorf("%w: cart changed during checkout", common.ErrConflict)
)

var orderTracer = otel.Tracer("storefront/internal/application/usecase/order")

// CheckoutInput is what the shopper submits at checkout.
type CheckoutInput struct {
	Email          string
	Shipping       odom.Address
	Note           string
	IdempotencyKey string
}

// OrderUsecase turns carts into orders and drives the order lifecycle.
type OrderUsecase struct {
	orders    odom.Repository
	carts     cartdom.Repository
	products  pdom.Repository
	limits    cartdom.Limits
	idem      IdempotencyStore
	cache     StatusCache
	publisher EventPublisher
	producer  string
	clock     Clock
}

// OrderDeps groups the optional collaborators of OrderUsecase. Nil members
// are skipped.
type OrderDeps struct {
	Idempotency IdempotencyStore
	StatusCache StatusCache
	Publisher   EventPublisher
	// Producer names this service in event envelopes.
	Producer string
	Clock    Clock
}

func NewOrderUsecase(orders odom.Repository, carts cartdom.Repository, products pdom.Repository, limits cartdom.Limits, deps OrderDeps) *OrderUsecase {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	producer := strings.TrimSpace(deps.Producer)
	if producer == "" {
		producer = "storefront"
	}
	return &OrderUsecase{
		orders:    orders,
		carts:     carts,
		products:  products,
		limits:    limits,
		idem:      deps.Idempotency,
		cache:     deps.StatusCache,
		publisher: deps.Publisher,
		producer:  producer,
		clock:     clock,
	}
}

// ========================================
// Checkout
// ========================================

// Checkout converts the owner's cart into a pending order.
//
// The cart is cleared only if it is still the version that was priced; a
// concurrent cart write makes checkout fail with ErrCartChanged. If storing
// the order fails the snapshotted lines are merged back into the cart.
// Retrying with the same idempotency key returns the order created first.
func (uc *OrderUsecase) Checkout(ctx context.Context, owner cartdom.OwnerKey, in CheckoutInput) (*odom.Order, error) {
	ctx, span := orderTracer.Start(ctx, "order.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("cart.owner.kind", string(owner.Kind())))

	if owner.IsZero() {
		return nil, cartdom.ErrInvalidOwner
	}

	key := ""
	if k := strings.TrimSpace(in.IdempotencyKey); k != "" && uc.idem != nil {
		key = owner.String() + ":" + k
		orderID, reserved, err := uc.idem.Reserve(ctx, key)
		if err != nil {
			return nil, err
		}
		if !reserved {
			if orderID == "" {
				return nil, ErrCheckoutInProgress
			}
			slog.InfoContext(ctx, "[order_usecase] checkout replayed", "owner", owner.String(), "orderId", orderID)
			return uc.orders.GetByID(ctx, orderID)
		}
	}

	o, err := uc.checkout(ctx, owner, in)
	if err != nil {
		span.RecordError(err)
		if key != "" {
			if rerr := uc.idem.Release(ctx, key); rerr != nil {
				slog.WarnContext(ctx, "[order_usecase] release idempotency key failed", "key", key, "err", rerr)
			}
		}
		return nil, err
	}

	if key != "" {
		if err := uc.idem.Complete(ctx, key, o.ID); err != nil {
			slog.WarnContext(ctx, "[order_usecase] complete idempotency key failed", "key", key, "err", err)
		}
	}
	uc.cacheStatus(ctx, o.ID, o.Status)

	if env, err := odom.NewCreatedEvent(o, uc.producer, uc.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "[order_usecase] build created event failed", "orderId", o.ID, "err", err)
	} else {
		uc.publish(ctx, env)
	}

	slog.InfoContext(ctx, "[order_usecase] order created",
		"orderId", o.ID, "owner", owner.String(), "items", len(o.Items), "total", o.Total.String())
	return o, nil
}

func (uc *OrderUsecase) checkout(ctx context.Context, owner cartdom.OwnerKey, in CheckoutInput) (*odom.Order, error) {
	snapshot, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, odom.ErrEmptyCart
	}

	items, err := uc.snapshotItems(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	draft, err := odom.New("", owner, in.Email, in.Shipping, items, in.Note, now)
	if err != nil {
		return nil, err
	}

	if _, err := uc.carts.Update(ctx, owner, now, func(c *cartdom.Cart) error {
		if c.Version != snapshot.Version {
			return ErrCartChanged
		}
		c.Clear(now)
		return nil
	}); err != nil {
		return nil, err
	}

	created, err := uc.orders.Create(ctx, draft)
	if err != nil {
		uc.restoreCart(ctx, owner, snapshot)
		return nil, err
	}
	return created, nil
}

func (uc *OrderUsecase) snapshotItems(ctx context.Context, c *cartdom.Cart) ([]odom.Item, error) {
	products, err := uc.products.GetMany(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	items := make([]odom.Item, 0, len(c.Items))
	for _, li := range c.Items {
		p, ok := products[li.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", odom.ErrProductGone, li.ProductID)
		}
		items = append(items, odom.SnapshotItem(p, li.Variants, li.Quantity))
	}
	return items, nil
}

func (uc *OrderUsecase) restoreCart(ctx context.Context, owner cartdom.OwnerKey, snapshot *cartdom.Cart) {
	now := uc.clock.Now()
	_, err := uc.carts.Update(ctx, owner, now, func(c *cartdom.Cart) error {
		c.MergeFrom(snapshot, uc.limits, now)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "[order_usecase] restore cart after failed checkout",
			"owner", owner.String(), "lines", len(snapshot.Items), "err", err)
	}
}

// ========================================
// Reads
// ========================================

// Get returns any order (console).
func (uc *OrderUsecase) Get(ctx context.Context, id string, populate ...string) (*odom.Order, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := common.NewPageRequest(1, 1).WithPopulate(populate...)
	if req.Populates(odom.PopulateItemsProduct) {
		if err := uc.populateProducts(ctx, o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// GetForOwner returns the order only when it belongs to owner. Orders of
// other owners look absent.
func (uc *OrderUsecase) GetForOwner(ctx context.Context, owner cartdom.OwnerKey, id string, populate ...string) (*odom.Order, error) {
	o, err := uc.Get(ctx, id, populate...)
	if err != nil {
		return nil, err
	}
	if o.Owner.String() != owner.String() {
		return nil, odom.ErrNotFound
	}
	return o, nil
}

// ListForOwner pages the owner's own orders.
func (uc *OrderUsecase) ListForOwner(ctx context.Context, owner cartdom.OwnerKey, f odom.Filter, req common.PageRequest) (common.PageResult[odom.Order], error) {
	if owner.IsZero() {
		return common.PageResult[odom.Order]{}, cartdom.ErrInvalidOwner
	}
	f.Owner = owner.String()
	return query.Paginate[odom.Order](ctx, uc.orders, f.Exprs(), req)
}

// ListAll pages every order (console).
func (uc *OrderUsecase) ListAll(ctx context.Context, f odom.Filter, req common.PageRequest) (common.PageResult[odom.Order], error) {
	return query.Paginate[odom.Order](ctx, uc.orders, f.Exprs(), req)
}

// Status returns the order status, reading the cache first.
func (uc *OrderUsecase) Status(ctx context.Context, id string) (odom.Status, error) {
	if uc.cache != nil {
		s, ok, err := uc.cache.Get(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "[order_usecase] status cache read failed", "orderId", id, "err", err)
		} else if ok {
			return s, nil
		}
	}
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	uc.cacheStatus(ctx, o.ID, o.Status)
	return o.Status, nil
}

// ========================================
// Status transitions
// ========================================

// UpdateStatus moves an order along the status table.
func (uc *OrderUsecase) UpdateStatus(ctx context.Context, id string, to odom.Status, by string) (*odom.Order, error) {
	ctx, span := orderTracer.Start(ctx, "order.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.status.to", string(to)))

	if _, err := odom.ParseStatus(string(to)); err != nil {
		return nil, err
	}

	o, err := uc.orders.UpdateStatus(ctx, id, func(o *odom.Order) error {
		return o.Transition(to, by, uc.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.cacheStatus(ctx, o.ID, o.Status)
	if env, err := odom.NewStatusChangedEvent(o, uc.producer, uc.clock.Now()); err != nil {
		slog.ErrorContext(ctx, "[order_usecase] build status event failed", "orderId", o.ID, "err", err)
	} else {
		uc.publish(ctx, env)
	}

	slog.InfoContext(ctx, "[order_usecase] status changed", "orderId", o.ID, "status", o.Status, "by", by)
	return o, nil
}

// ----------------------------------------
// helpers
// ----------------------------------------

func (uc *OrderUsecase) populateProducts(ctx context.Context, o *odom.Order) error {
	products, err := uc.products.GetMany(ctx, o.ProductIDs())
	if err != nil {
		return err
	}
	for i := range o.Items {
		if p, ok := products[o.Items[i].ProductID]; ok {
			o.Items[i].Product = &p
		}
	}
	return nil
}

func (uc *OrderUsecase) cacheStatus(ctx context.Context, id string, s odom.Status) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, id, s); err != nil {
		slog.WarnContext(ctx, "[order_usecase] status cache write failed", "orderId", id, "err", err)
	}
}

// publish never fails the caller: the order is already stored.
func (uc *OrderUsecase) publish(ctx context.Context, env odom.Envelope) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, env); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.ErrorContext(ctx, "[order_usecase] publish event failed",
			"eventType", env.EventType, "orderId", env.CorrelationID, "err", err)
	}
}
