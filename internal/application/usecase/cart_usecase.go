// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	pdom "storefront/internal/domain/product"
)

var (
	ErrProductUnknown = fmt.Errorf("%w: product does not exist", common.ErrInvalidInput)
	ErrNotGuestOwner  = fmt.Errorf("%w: merge source must be a guest cart", common.ErrInvalidInput)
	ErrNotUserOwner   = fmt.Errorf("%w: merge target must be a registered cart", common.ErrInvalidInput)
)

var cartTracer = otel.Tracer("storefront/internal/application/usecase/cart")

// CartUsecase applies line-item operations to an owner's cart.
// Every write is a single Repository.Update, so concurrent requests for the
// same owner serialize in the store.
type CartUsecase struct {
	repo     cartdom.Repository
	products pdom.Repository
	limits   cartdom.Limits
	clock    Clock
}

func NewCartUsecase(repo cartdom.Repository, products pdom.Repository, limits cartdom.Limits) *CartUsecase {
	return NewCartUsecaseWithClock(repo, products, limits, SystemClock)
}

func NewCartUsecaseWithClock(repo cartdom.Repository, products pdom.Repository, limits cartdom.Limits, clock Clock) *CartUsecase {
	if clock == nil {
		clock = SystemClock
	}
	return &CartUsecase{repo: repo, products: products, limits: limits, clock: clock}
}

// Limits returns the configured quantity bounds.
func (uc *CartUsecase) Limits() cartdom.Limits { return uc.limits }

// Get returns the owner's cart. An owner without a cart gets an empty,
// unsaved one.
func (uc *CartUsecase) Get(ctx context.Context, owner cartdom.OwnerKey) (*cartdom.Cart, error) {
	c, err := uc.repo.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.New(owner, uc.clock.Now()), nil
	}
	return c, nil
}

// AddItem merges qty of (productID, variants) into the cart. The product
// must exist and offer the selected options.
func (uc *CartUsecase) AddItem(ctx context.Context, owner cartdom.OwnerKey, productID string, variants cartdom.Variants, qty int) (*cartdom.Cart, error) {
	ctx, span := uc.startSpan(ctx, "cart.AddItem", owner)
	defer span.End()

	pid := strings.TrimSpace(productID)
	if err := uc.checkProduct(ctx, pid, variants); err != nil {
		return nil, err
	}

	c, err := uc.repo.Update(ctx, owner, uc.clock.Now(), func(c *cartdom.Cart) error {
		return c.AddItem(pid, variants, qty, uc.limits, uc.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slog.InfoContext(ctx, "[cart_usecase] item added",
		"owner", owner.String(), "productId", pid, "qty", qty, "version", c.Version)
	return c, nil
}

// UpdateQuantity sets the absolute quantity of an existing line; qty <= 0
// removes it.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, owner cartdom.OwnerKey, productID string, variants cartdom.Variants, qty int) (*cartdom.Cart, error) {
	ctx, span := uc.startSpan(ctx, "cart.UpdateQuantity", owner)
	defer span.End()

	c, err := uc.repo.Update(ctx, owner, uc.clock.Now(), func(c *cartdom.Cart) error {
		return c.UpdateQuantity(productID, variants, qty, uc.limits, uc.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

// RemoveItem deletes a line. Fails with cart.ErrLineItemNotFound when absent.
func (uc *CartUsecase) RemoveItem(ctx context.Context, owner cartdom.OwnerKey, productID string, variants cartdom.Variants) (*cartdom.Cart, error) {
	ctx, span := uc.startSpan(ctx, "cart.RemoveItem", owner)
	defer span.End()

	c, err := uc.repo.Update(ctx, owner, uc.clock.Now(), func(c *cartdom.Cart) error {
		return c.RemoveItem(productID, variants, uc.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

// Clear empties the cart.
func (uc *CartUsecase) Clear(ctx context.Context, owner cartdom.OwnerKey) (*cartdom.Cart, error) {
	ctx, span := uc.startSpan(ctx, "cart.Clear", owner)
	defer span.End()

	return uc.repo.Update(ctx, owner, uc.clock.Now(), func(c *cartdom.Cart) error {
		c.Clear(uc.clock.Now())
		return nil
	})
}

// MergeGuestIntoUser folds the guest cart into the user's cart at sign-in
// and empties the guest cart. Calling it again is harmless.
func (uc *CartUsecase) MergeGuestIntoUser(ctx context.Context, guest, user cartdom.OwnerKey) (*cartdom.Cart, error) {
	if !guest.IsGuest() || guest.IsZero() {
		return nil, ErrNotGuestOwner
	}
	if user.IsGuest() || user.IsZero() {
		return nil, ErrNotUserOwner
	}

	ctx, span := uc.startSpan(ctx, "cart.MergeGuestIntoUser", user)
	defer span.End()

	merged := 0
	c, err := uc.repo.Merge(ctx, guest, user, uc.clock.Now(), func(from, to *cartdom.Cart) error {
		merged = len(from.Items)
		if merged == 0 {
			return nil
		}
		now := uc.clock.Now()
		to.MergeFrom(from, uc.limits, now)
		from.Clear(now)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	slog.InfoContext(ctx, "[cart_usecase] guest cart merged",
		"guest", guest.String(), "user", user.String(), "mergedLines", merged)
	return c, nil
}

func (uc *CartUsecase) checkProduct(ctx context.Context, productID string, variants cartdom.Variants) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", cartdom.ErrInvalidCart)
	}
	if uc.products == nil {
		return nil
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrProductUnknown, productID)
		}
		return err
	}
	return p.CheckVariants(variants)
}

func (uc *CartUsecase) startSpan(ctx context.Context, name string, owner cartdom.OwnerKey) (context.Context, trace.Span) {
	ctx, span := cartTracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("cart.owner.kind", string(owner.Kind())),
	)
	return ctx, span
}
