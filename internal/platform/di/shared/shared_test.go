package shared

import (
	"context"
	"errors"
	"testing"

	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapters/out/mail"
	"storefront/internal/adapters/out/memory"
	"storefront/internal/application/usecase"
	appcfg "storefront/internal/infra/config"
)

func memoryConfig() *appcfg.Config {
	return &appcfg.Config{
		ServiceName:         "test",
		StoreBackend:        appcfg.BackendMemory,
		MailFrom:            "shop@example.com",
		ShopName:            "Test Shop",
		CartMaxLineQuantity: 7,
	}
}

func TestNewInfra_MemoryBackendNeedsNoClients(t *testing.T) {
	inf, err := NewInfra(context.Background(), memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = inf.Close() })

	assert.Nil(t, inf.FirestoreClient())
	assert.Nil(t, inf.GCS)
	assert.Nil(t, inf.Redis)
	assert.Nil(t, inf.Verifier())
	assert.Equal(t, 7, inf.CartLimits().MaxLineQuantity)
}

func TestNewInfra_RejectsInvalidConfig(t *testing.T) {
	_, err := NewInfra(context.Background(), nil)
	require.Error(t, err)

	cfg := memoryConfig()
	cfg.StoreBackend = "postgres"
	_, err = NewInfra(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewStores_Memory(t *testing.T) {
	inf, err := NewInfra(context.Background(), memoryConfig())
	require.NoError(t, err)

	s := NewStores(inf)
	assert.IsType(t, &memory.ProductRepository{}, s.Products)
	assert.IsType(t, &memory.OrderRepository{}, s.Orders)
	assert.IsType(t, &memory.IdempotencyStore{}, s.Idempotency)
	assert.IsType(t, &memory.StatusCache{}, s.StatusCache)
	assert.Nil(t, s.Images)
}

func TestNewPublisher_InlineWithoutBrokers(t *testing.T) {
	inf, err := NewInfra(context.Background(), memoryConfig())
	require.NoError(t, err)

	p := NewPublisher(context.Background(), inf)
	defer p.Close()
	assert.IsType(t, &usecase.InlinePublisher{}, p.EventPublisher)
}

func TestNewMailer(t *testing.T) {
	inf, err := NewInfra(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.IsType(t, &mail.OrderMailer{}, NewMailer(context.Background(), inf))

	inf.Config.SendGridSecretID = "sendgrid"
	_, err = inf.SendGridAPIKey(context.Background())
	require.Error(t, err)
	// falls back to logging
	assert.NotNil(t, NewMailer(context.Background(), inf))

	inf.Config.SendGridAPIKey = " SG.key "
	key, err := inf.SendGridAPIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SG.key", key)
}

func TestSecretName(t *testing.T) {
	tests := []struct {
		project, id string
		want        string
		wantErr     bool
	}{
		{"p1", "sendgrid", "projects/p1/secrets/sendgrid/versions/latest", false},
		{"", "projects/p2/secrets/x", "projects/p2/secrets/x/versions/latest", false},
		{"", "projects/p2/secrets/x/versions/3", "projects/p2/secrets/x/versions/3", false},
		{"", "sendgrid", "", true},
		{"p1", " ", "", true},
	}
	for _, tt := range tests {
		got, err := secretName(tt.project, tt.id)
		if tt.wantErr {
			assert.Error(t, err, tt.id)
			continue
		}
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, got)
	}
}

type fakeSecrets struct {
	names []string
	data  string
	err   error
}

func (f *fakeSecrets) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.names = append(f.names, req.GetName())
	if f.err != nil {
		return nil, f.err
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(f.data)},
	}, nil
}

func TestAccessSecret(t *testing.T) {
	sm := &fakeSecrets{data: "SG.secret\n"}
	v, err := accessSecret(context.Background(), sm, "p1", "sendgrid")
	require.NoError(t, err)
	assert.Equal(t, "SG.secret", v)
	assert.Equal(t, []string{"projects/p1/secrets/sendgrid/versions/latest"}, sm.names)

	sm.err = errors.New("permission denied")
	_, err = accessSecret(context.Background(), sm, "p1", "sendgrid")
	require.ErrorIs(t, err, sm.err)
}

func TestRedactPath(t *testing.T) {
	assert.Equal(t, "***/key.json", redactPath(`C:\secrets\key.json`))
	assert.Equal(t, "", redactPath(" "))
}
