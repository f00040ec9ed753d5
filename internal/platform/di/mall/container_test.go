package mall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "storefront/internal/infra/config"
	shared "storefront/internal/platform/di/shared"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	infra, err := shared.NewInfra(context.Background(), &appcfg.Config{
		ServiceName:  "mall",
		StoreBackend: appcfg.BackendMemory,
	})
	require.NoError(t, err)
	c, err := NewContainer(context.Background(), infra)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
		_ = infra.Close()
	})
	return c
}

func TestNewContainer_NilInfra(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.ErrorIs(t, err, errNilInfra)
}

func TestRegister_MountsMallRoutes(t *testing.T) {
	c := newTestContainer(t)
	r := chi.NewRouter()
	Register(r, c)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mall/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mall/guest-token", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "guestToken"))

	// no credentials at all
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mall/me/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
