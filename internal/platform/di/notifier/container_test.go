package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "storefront/internal/infra/config"
	shared "storefront/internal/platform/di/shared"
)

func TestNewContainer(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.ErrorIs(t, err, errNilInfra)

	cfg := &appcfg.Config{StoreBackend: appcfg.BackendMemory, ShopName: "Shop"}
	infra, err := shared.NewInfra(context.Background(), cfg)
	require.NoError(t, err)

	_, err = NewContainer(context.Background(), infra)
	require.ErrorIs(t, err, errNoBrokers)

	cfg.KafkaBrokers = []string{"127.0.0.1:9092"}
	cfg.KafkaGroupID = "notifier-test"
	c, err := NewContainer(context.Background(), infra)
	require.NoError(t, err)
	defer c.Consumer.Close()
	assert.NotNil(t, c.NotifierUC)
	assert.NotNil(t, c.Consumer)
}
