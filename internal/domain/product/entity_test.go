package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/common"
)

var now = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func mustMoney(t *testing.T, amount string) common.Money {
	t.Helper()
	m, err := common.NewMoney(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		pname     string
		price     common.Money
		axes      []VariantAxis
		wantError string
	}{
		{
			name:  "ok",
			pname: " Lawn Suit ",
			price: mustMoney(t, "49.99"),
			axes:  []VariantAxis{{Name: "color", Options: []string{" Black ", "", "White"}}},
		},
		{
			name:      "missing name",
			price:     mustMoney(t, "1"),
			wantError: "invalid input: product: name is required",
		},
		{
			name:      "missing currency",
			pname:     "x",
			wantError: "invalid input: product: price currency is required",
		},
		{
			name:      "duplicate axis",
			pname:     "x",
			price:     mustMoney(t, "1"),
			axes:      []VariantAxis{{Name: "size"}, {Name: " size"}},
			wantError: `invalid input: product: duplicate variant axis "size"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New("", tt.pname, "", tt.price, "", tt.axes, false, now)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Lawn Suit", p.Name)
			assert.Equal(t, []VariantAxis{{Name: "color", Options: []string{"Black", "White"}}}, p.VariantAxes)
			assert.NotNil(t, p.Images)
		})
	}
}

func TestProduct_CheckVariants(t *testing.T) {
	p, err := New("p1", "Shirt", "", mustMoney(t, "10"), "", []VariantAxis{
		{Name: "color", Options: []string{"Black", "White"}},
		{Name: "size", Options: []string{"M", "L"}},
	}, false, now)
	require.NoError(t, err)

	assert.NoError(t, p.CheckVariants(nil))
	assert.NoError(t, p.CheckVariants(cart.Variants{"color": "Black"}))
	assert.NoError(t, p.CheckVariants(cart.Variants{"color": "White", "size": "L"}))

	err = p.CheckVariants(cart.Variants{"color": "Red"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	err = p.CheckVariants(cart.Variants{"fabric": "Linen"})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestProduct_Images(t *testing.T) {
	p, err := New("p1", "Shirt", "", mustMoney(t, "10"), "", nil, false, now)
	require.NoError(t, err)

	for i := 0; i < MaxImages; i++ {
		require.NoError(t, p.AddImage(common.Image{PublicID: string(rune('a' + i))}, now))
	}
	assert.ErrorIs(t, p.AddImage(common.Image{PublicID: "z"}, now), ErrTooManyImages)

	img, err := p.RemoveImage("c", now)
	require.NoError(t, err)
	assert.Equal(t, "c", img.PublicID)
	assert.Len(t, p.Images, MaxImages-1)

	_, err = p.RemoveImage("c", now)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestProduct_ApplyKeepsOriginalOnError(t *testing.T) {
	p, err := New("p1", "Shirt", "", mustMoney(t, "10"), "c1", nil, false, now)
	require.NoError(t, err)

	empty := ""
	err = p.Apply(Patch{Name: &empty}, now.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, "Shirt", p.Name)
	assert.Equal(t, now, p.UpdatedAt)

	price := mustMoney(t, "12.5")
	require.NoError(t, p.Apply(Patch{Price: &price}, now.Add(time.Hour)))
	assert.Equal(t, int64(1250), p.Price.MinorUnits())
}

func TestFilter_Exprs(t *testing.T) {
	featured := true
	minPrice := mustMoney(t, "5")
	f := Filter{CategoryID: "c1", Featured: &featured, MinPrice: &minPrice, Search: "lawn", IDs: []string{"a"}}

	assert.Equal(t, common.Filter{
		common.Eq{Field: "categoryId", Value: "c1"},
		common.Eq{Field: "featured", Value: true},
		common.Range{Field: "priceMinor", Min: int64(500)},
		common.In{Field: "id", Values: []any{"a"}},
		common.Contains{Field: "name", Pattern: "lawn"},
	}, f.Exprs())

	assert.Empty(t, Filter{}.Exprs())
	assert.Equal(t, "priceMinor", StoreField("price"))
	assert.Equal(t, "name", StoreField("name"))
}
