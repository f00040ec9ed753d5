package console

import (
	"testing"

	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	odom "storefront/internal/domain/order"
)

var cartLimits = cartdom.Limits{MaxLineQuantity: 10}

var testAddress = odom.Address{
	FullName:   "Sam Shopper",
	Line1:      "1 Main St",
	City:       "Springfield",
	PostalCode: "12345",
	Country:    "US",
}

func shopper(t *testing.T) cartdom.OwnerKey {
	t.Helper()
	k, err := cartdom.Registered("shopper-1")
	require.NoError(t, err)
	return k
}
