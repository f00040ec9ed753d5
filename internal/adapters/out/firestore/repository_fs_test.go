package firestore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func usd(t *testing.T, amount string) common.Money {
	t.Helper()
	m, err := common.NewMoney(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestCategoryRepositoryFS_CRUDAndPopulate(t *testing.T) {
	client := newTestClient(t)
	repo := NewCategoryRepositoryFS(client)
	ctx := context.Background()

	parent, err := catdom.New("", "Apparel", "", "", "", t0)
	require.NoError(t, err)
	_, err = repo.Create(ctx, parent)
	require.NoError(t, err)
	require.NotEmpty(t, parent.ID)

	child, err := catdom.New("shirts", "Shirts", "", "", parent.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	_, err = repo.Create(ctx, child)
	require.NoError(t, err)

	_, err = repo.Create(ctx, child)
	require.ErrorIs(t, err, common.ErrConflict)

	got, err := repo.GetBySlug(ctx, "shirts")
	require.NoError(t, err)
	assert.Equal(t, "shirts", got.ID)

	rows, err := repo.Find(ctx, catdom.Filter{ParentID: parent.ID}.Exprs(),
		common.NewPageRequest(1, 10).WithPopulate(catdom.PopulateParent))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Parent)
	assert.Equal(t, "Apparel", rows[0].Parent.Name)

	n, err := repo.Count(ctx, catdom.Filter{Search: "app"}.Exprs())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, child.ID))
	_, err = repo.GetByID(ctx, child.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, child.ID), common.ErrNotFound)
}

func TestProductRepositoryFS_FindPaginatesAndSorts(t *testing.T) {
	client := newTestClient(t)
	repo := NewProductRepositoryFS(client, NewCategoryRepositoryFS(client))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		p, err := pdom.New(fmt.Sprintf("p%02d", i), fmt.Sprintf("Item %02d", i), "",
			usd(t, fmt.Sprintf("%d.50", i)), "", nil, i%2 == 0, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		_, err = repo.Create(ctx, p)
		require.NoError(t, err)
	}

	req := common.NewPageRequest(2, 5, common.SortField{Field: "price", Order: common.SortDesc})
	rows, err := repo.Find(ctx, nil, req)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "p06", rows[0].ID)
	assert.True(t, rows[0].Price.Equal(usd(t, "6.50")))

	featured := true
	n, err := repo.Count(ctx, pdom.Filter{Featured: &featured}.Exprs())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	rows, err = repo.Find(ctx, pdom.Filter{Search: "item 1"}.Exprs(), common.NewPageRequest(1, 2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p10", rows[0].ID)

	many, err := repo.GetMany(ctx, []string{"p01", "p01", "missing"})
	require.NoError(t, err)
	assert.Len(t, many, 1)
}

func TestCartRepositoryFS_ConcurrentUpdates(t *testing.T) {
	client := newTestClient(t)
	repo := NewCartRepositoryFS(client)
	owner, err := cartdom.Registered("u1")
	require.NoError(t, err)

	c, err := repo.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.Nil(t, c)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), owner, t0, func(c *cartdom.Cart) error {
				return c.AddItem("p1", cartdom.Variants{"size": "M"}, 1, cartdom.Limits{}, t0)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err = repo.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, n, c.Items[0].Quantity)
	assert.Equal(t, "M", c.Items[0].Variants["size"])
}

func TestCartRepositoryFS_Merge(t *testing.T) {
	client := newTestClient(t)
	repo := NewCartRepositoryFS(client)
	ctx := context.Background()
	guest, err := cartdom.Guest(cartdom.NewGuestToken())
	require.NoError(t, err)
	user, err := cartdom.Registered("u1")
	require.NoError(t, err)

	_, err = repo.Update(ctx, guest, t0, func(c *cartdom.Cart) error {
		return c.AddItem("p1", nil, 2, cartdom.Limits{}, t0)
	})
	require.NoError(t, err)

	merged, err := repo.Merge(ctx, guest, user, t0, func(from, to *cartdom.Cart) error {
		to.MergeFrom(from, cartdom.Limits{}, t0)
		from.Clear(t0)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.TotalQuantity())

	g, err := repo.Get(ctx, guest)
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestOrderRepositoryFS_CreateAndTransition(t *testing.T) {
	client := newTestClient(t)
	products := NewProductRepositoryFS(client, nil)
	repo := NewOrderRepositoryFS(client, products)
	ctx := context.Background()

	p, err := pdom.New("tee", "Tee", "", usd(t, "12.50"), "", nil, false, t0)
	require.NoError(t, err)
	_, err = products.Create(ctx, p)
	require.NoError(t, err)

	owner, err := cartdom.Registered("u1")
	require.NoError(t, err)
	o, err := odom.New("", owner, "a@b.co", odom.Address{FullName: "A", Line1: "1", City: "C", Country: "GB"},
		[]odom.Item{odom.SnapshotItem(*p, cartdom.Variants{"size": "M"}, 2)}, "", t0)
	require.NoError(t, err)
	created, err := repo.Create(ctx, o)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, created.ID, func(o *odom.Order) error {
		return o.Transition(odom.StatusPaid, "admin", t0.Add(time.Hour))
	})
	require.NoError(t, err)
	assert.Equal(t, odom.StatusPaid, updated.Status)

	_, err = repo.UpdateStatus(ctx, created.ID, func(o *odom.Order) error {
		return o.Transition(odom.StatusCompleted, "admin", t0)
	})
	require.ErrorIs(t, err, odom.ErrInvalidTransition)

	rows, err := repo.Find(ctx, odom.Filter{Owner: owner.String()}.Exprs(),
		common.NewPageRequest(1, 10).WithPopulate(odom.PopulateItemsProduct))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, odom.StatusPaid, rows[0].Status)
	require.Len(t, rows[0].History, 1)
	assert.True(t, rows[0].Total.Equal(usd(t, "25.00")))
	require.NotNil(t, rows[0].Items[0].Product)

	_, err = repo.UpdateStatus(ctx, "missing", func(*odom.Order) error { return nil })
	require.ErrorIs(t, err, common.ErrNotFound)
}
