package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

var testAddress = odom.Address{
	FullName:   "Ada Lovelace",
	Line1:      "1 Analytical St",
	City:       "London",
	PostalCode: "N1",
	Country:    "GB",
}

type orderFixture struct {
	*stores
	carts  *CartUsecase
	orders *OrderUsecase
	pub    *recordingPublisher
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	s := newStores()
	pub := &recordingPublisher{}
	return &orderFixture{
		stores: s,
		carts:  newCartUC(s, cartdom.Limits{}),
		orders: NewOrderUsecase(s.orders, s.carts, s.products, cartdom.Limits{}, OrderDeps{
			Idempotency: s.idem,
			StatusCache: s.cache,
			Publisher:   pub,
			Producer:    "mall",
			Clock:       s.clock,
		}),
		pub: pub,
	}
}

func (f *orderFixture) fillCart(t *testing.T, owner cartdom.OwnerKey) (*pdom.Product, *pdom.Product) {
	t.Helper()
	tee := f.addProduct(t, "tee", "Tee", "12.50")
	mug := f.addProduct(t, "mug", "Mug", "8.00")
	ctx := context.Background()
	_, err := f.carts.AddItem(ctx, owner, tee.ID, cartdom.Variants{"size": "M"}, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, owner, mug.ID, nil, 1)
	require.NoError(t, err)
	return tee, mug
}

func TestOrderUsecase_CheckoutSnapshotsAndClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	owner := userOwner(t, "u1")
	tee, _ := f.fillCart(t, owner)
	ctx := context.Background()

	o, err := f.orders.Checkout(ctx, owner, CheckoutInput{Email: "Ada <ada@example.com>", Shipping: testAddress})
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, odom.StatusPending, o.Status)
	assert.Equal(t, "ada@example.com", o.Email)
	assert.Equal(t, "u1", o.UserID)
	require.Len(t, o.Items, 2)
	assert.True(t, o.Total.Equal(usd(t, "33.00")), "got %s", o.Total)

	// later price changes do not touch the order
	newPrice := usd(t, "99.00")
	_, err = NewCatalogUsecase(f.products, f.categories, nil).Update(ctx, tee.ID, pdom.Patch{Price: &newPrice})
	require.NoError(t, err)
	stored, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(usd(t, "12.50")))

	c, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	s, err := f.orders.Status(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, odom.StatusPending, s)
	assert.Equal(t, []string{odom.EventOrderCreated}, f.pub.types())
}

func TestOrderUsecase_CheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.orders.Checkout(context.Background(), guestOwner(t), CheckoutInput{Email: "a@b.co", Shipping: testAddress})
	require.ErrorIs(t, err, odom.ErrEmptyCart)
	assert.Empty(t, f.pub.types())
}

func TestOrderUsecase_CheckoutValidationKeepsCart(t *testing.T) {
	f := newOrderFixture(t)
	owner := guestOwner(t)
	f.fillCart(t, owner)
	ctx := context.Background()

	_, err := f.orders.Checkout(ctx, owner, CheckoutInput{Email: "not-an-email", Shipping: testAddress})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = f.orders.Checkout(ctx, owner, CheckoutInput{Email: "a@b.co", Shipping: odom.Address{City: "X"}})
	require.ErrorIs(t, err, common.ErrInvalidInput)

	c, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalQuantity())
}

func TestOrderUsecase_CheckoutProductGone(t *testing.T) {
	f := newOrderFixture(t)
	owner := guestOwner(t)
	_, mug := f.fillCart(t, owner)
	ctx := context.Background()
	require.NoError(t, f.products.Delete(ctx, mug.ID))

	_, err := f.orders.Checkout(ctx, owner, CheckoutInput{Email: "a@b.co", Shipping: testAddress})
	require.ErrorIs(t, err, odom.ErrProductGone)
}

func TestOrderUsecase_CheckoutIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	owner := userOwner(t, "u1")
	f.fillCart(t, owner)
	ctx := context.Background()
	in := CheckoutInput{Email: "a@b.co", Shipping: testAddress, IdempotencyKey: "k-1"}

	first, err := f.orders.Checkout(ctx, owner, in)
	require.NoError(t, err)
	second, err := f.orders.Checkout(ctx, owner, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := f.stores.orders.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.pub.types(), 1)

	// the same key from another owner is a different checkout
	other := userOwner(t, "u2")
	_, err = f.carts.AddItem(ctx, other, "mug", nil, 1)
	require.NoError(t, err)
	third, err := f.orders.Checkout(ctx, other, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestOrderUsecase_CheckoutKeyInProgress(t *testing.T) {
	f := newOrderFixture(t)
	owner := userOwner(t, "u1")
	f.fillCart(t, owner)
	ctx := context.Background()

	_, reserved, err := f.idem.Reserve(ctx, owner.String()+":busy")
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.orders.Checkout(ctx, owner, CheckoutInput{Email: "a@b.co", Shipping: testAddress, IdempotencyKey: "busy"})
	require.ErrorIs(t, err, ErrCheckoutInProgress)
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestOrderUsecase_CheckoutFailureRestoresCartAndReleasesKey(t *testing.T) {
	f := newOrderFixture(t)
	owner := userOwner(t, "u1")
	f.fillCart(t, owner)
	ctx := context.Background()

	broken := NewOrderUsecase(failingOrders{f.stores.orders}, f.stores.carts, f.products, cartdom.Limits{}, OrderDeps{
		Idempotency: f.idem,
		Clock:       f.clock,
	})
	in := CheckoutInput{Email: "a@b.co", Shipping: testAddress, IdempotencyKey: "k-9"}
	_, err := broken.Checkout(ctx, owner, in)
	require.ErrorIs(t, err, errStoreDown)

	c, err := f.carts.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TotalQuantity())

	o, err := f.orders.Checkout(ctx, owner, in)
	require.NoError(t, err, "released key can be retried")
	assert.Len(t, o.Items, 2)
}

func TestOrderUsecase_GetForOwnerHidesOtherOrders(t *testing.T) {
	f := newOrderFixture(t)
	owner := userOwner(t, "u1")
	f.fillCart(t, owner)
	ctx := context.Background()
	o, err := f.orders.Checkout(ctx, owner, CheckoutInput{Email: "a@b.co", Shipping: testAddress})
	require.NoError(t, err)

	got, err := f.orders.GetForOwner(ctx, owner, o.ID, odom.PopulateItemsProduct)
	require.NoError(t, err)
	require.NotNil(t, got.Items[0].Product)

	_, err = f.orders.GetForOwner(ctx, userOwner(t, "intruder"), o.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestOrderUsecase_ListForOwner(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	mine := userOwner(t, "u1")
	theirs := userOwner(t, "u2")
	f.addProduct(t, "p", "P", "1.00")

	for i := 0; i < 3; i++ {
		_, err := f.carts.AddItem(ctx, mine, "p", nil, 1)
		require.NoError(t, err)
		_, err = f.orders.Checkout(ctx, mine, CheckoutInput{Email: "a@b.co", Shipping: testAddress})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}
	_, err := f.carts.AddItem(ctx, theirs, "p", nil, 1)
	require.NoError(t, err)
	_, err = f.orders.Checkout(ctx, theirs, CheckoutInput{Email: "b@b.co", Shipping: testAddress})
	require.NoError(t, err)

	page, err := f.orders.ListForOwner(ctx, mine, odom.Filter{}, common.NewPageRequest(1, 2, common.SortField{Field: "createdAt", Order: common.SortDesc}))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalResults)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Results, 2)
	assert.True(t, page.Results[0].CreatedAt.After(page.Results[1].CreatedAt))

	all, err := f.orders.ListAll(ctx, odom.Filter{}, common.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalResults)
}

func TestOrderUsecase_UpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	owner := guestOwner(t)
	f.fillCart(t, owner)
	ctx := context.Background()
	o, err := f.orders.Checkout(ctx, owner, CheckoutInput{Email: "a@b.co", Shipping: testAddress})
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, o.ID, odom.StatusShipped, "admin")
	require.ErrorIs(t, err, odom.ErrInvalidTransition)

	_, err = f.orders.UpdateStatus(ctx, o.ID, odom.Status("lost"), "admin")
	require.ErrorIs(t, err, odom.ErrInvalidStatus)

	_, err = f.orders.UpdateStatus(ctx, "nope", odom.StatusPaid, "admin")
	require.ErrorIs(t, err, common.ErrNotFound)

	paid, err := f.orders.UpdateStatus(ctx, o.ID, odom.StatusPaid, "admin")
	require.NoError(t, err)
	assert.Equal(t, odom.StatusPaid, paid.Status)
	require.Len(t, paid.History, 1)
	assert.Equal(t, "admin", paid.History[0].By)

	s, err := f.orders.Status(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, odom.StatusPaid, s)

	assert.Equal(t, []string{odom.EventOrderCreated, odom.EventOrderStatusChanged}, f.pub.types())
}
