package order

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/common"
	"storefront/internal/domain/product"
)

var now = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func testAddress() Address {
	return Address{FullName: "Ayesha Khan", Line1: "12 Mall Road", City: "Lahore", Country: "PK", PostalCode: "54000"}
}

func testProduct(t *testing.T, id, price string) product.Product {
	t.Helper()
	m, err := common.NewMoney(price, "USD")
	require.NoError(t, err)
	p, err := product.New(id, "Product "+id, "", m, "", nil, false, now)
	require.NoError(t, err)
	return *p
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusShipped, StatusCompleted, true},
		{StatusShipped, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPaid, false},
		{StatusPaid, StatusPaid, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("lost")
	require.EqualError(t, err, `invalid input: order status: "lost"`)
}

func TestNew_SnapshotsAndTotals(t *testing.T) {
	owner, err := cart.Registered("uid-1")
	require.NoError(t, err)

	shirt := testProduct(t, "p1", "12.50")
	scarf := testProduct(t, "p2", "3.25")
	items := []Item{
		SnapshotItem(shirt, cart.Variants{"size": "M"}, 2),
		SnapshotItem(scarf, nil, 3),
	}

	o, err := New("o1", owner, " buyer@example.com ", testAddress(), items, "", now)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "uid-1", o.UserID)
	assert.Equal(t, "buyer@example.com", o.Email)
	assert.Equal(t, "34.75 USD", o.Total.String())
	assert.True(t, o.Subtotal.Equal(o.Total))

	// changing the product later does not touch the snapshot
	shirt.Name = "Renamed"
	shirt.Price, _ = common.NewMoney("99", "USD")
	assert.Equal(t, "Product p1", o.Items[0].Name)
	assert.Equal(t, "12.50 USD", o.Items[0].UnitPrice.String())
	assert.Equal(t, "25.00 USD", o.Items[0].LineTotal.String())
}

func TestNew_Errors(t *testing.T) {
	owner, err := cart.Registered("uid-1")
	require.NoError(t, err)
	item := SnapshotItem(testProduct(t, "p1", "1"), nil, 1)

	eur, err := common.NewMoney("1", "EUR")
	require.NoError(t, err)
	eurItem := item
	eurItem.UnitPrice = eur
	eurItem.LineTotal = eur

	tests := []struct {
		name      string
		owner     cart.OwnerKey
		email     string
		addr      Address
		items     []Item
		wantError string
	}{
		{name: "no owner", email: "a@b.co", addr: testAddress(), items: []Item{item}, wantError: "invalid input: order: owner is required"},
		{name: "empty cart", owner: owner, email: "a@b.co", addr: testAddress(), wantError: "invalid input: cart is empty"},
		{name: "bad email", owner: owner, email: "nope", addr: testAddress(), items: []Item{item}, wantError: `invalid input: order: email "nope"`},
		{name: "bad address", owner: owner, email: "a@b.co", addr: Address{City: "Lahore"}, items: []Item{item}, wantError: "invalid input: order: shipping address missing fullName, line1, country"},
		{name: "mixed currency", owner: owner, email: "a@b.co", addr: testAddress(), items: []Item{item, eurItem}, wantError: "invalid input: currency mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("", tt.owner, tt.email, tt.addr, tt.items, "", now)
			require.EqualError(t, err, tt.wantError)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestOrder_Transition(t *testing.T) {
	owner, err := cart.Guest(cart.NewGuestToken())
	require.NoError(t, err)
	o, err := New("o1", owner, "g@example.com", testAddress(), []Item{SnapshotItem(testProduct(t, "p1", "1"), nil, 1)}, "", now)
	require.NoError(t, err)
	assert.Empty(t, o.UserID)

	require.NoError(t, o.Transition(StatusPaid, "admin-1", now.Add(time.Minute)))
	err = o.Transition(StatusCompleted, "admin-1", now.Add(2*time.Minute))
	require.EqualError(t, err, "invalid input: order status transition: paid -> completed")

	want := []StatusChange{{From: StatusPending, To: StatusPaid, By: "admin-1"}}
	if diff := cmp.Diff(want, o.History, cmpopts.IgnoreFields(StatusChange{}, "At")); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StatusPaid, o.Status)
}

func TestFilter_Exprs(t *testing.T) {
	from := now.Add(-time.Hour)
	f := Filter{Owner: "user:1", Statuses: []Status{StatusPaid, StatusShipped}, CreatedFrom: &from, Email: "gmail"}

	assert.Equal(t, common.Filter{
		common.Eq{Field: "owner", Value: "user:1"},
		common.In{Field: "status", Values: []any{"paid", "shipped"}},
		common.Range{Field: "createdAt", Min: from},
		common.Contains{Field: "email", Pattern: "gmail"},
	}, f.Exprs())
}
