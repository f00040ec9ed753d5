package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GCP_PROJECT", "")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "fallback-project")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", " b1:9092, ,b2:9092 ")
	t.Setenv("CART_MAX_LINE_QUANTITY", "oops")

	cfg := Load("mall")
	assert.Equal(t, "mall", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "fallback-project", cfg.GCPProjectID)
	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0, cfg.CartMaxLineQuantity)
	assert.Equal(t, "admin", cfg.AdminClaim)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreBackend: BackendFirestore}
	require.Error(t, cfg.Validate())

	cfg = &Config{StoreBackend: "postgres"}
	require.Error(t, cfg.Validate())

	cfg = &Config{StoreBackend: BackendMemory, CartMaxLineQuantity: -1}
	require.Error(t, cfg.Validate())

	cfg = &Config{StoreBackend: BackendMemory}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.UseMemory())
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOP_NAME=From File\nMAIL_FROM=file@example.com\n"), 0o600))

	t.Setenv("SHOP_NAME", "From Env")
	t.Setenv("MAIL_FROM", "")
	require.NoError(t, os.Unsetenv("MAIL_FROM"))

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))

	cfg := Load("notifier")
	assert.Equal(t, "From Env", cfg.ShopName)
	assert.Equal(t, "file@example.com", cfg.MailFrom)
}
