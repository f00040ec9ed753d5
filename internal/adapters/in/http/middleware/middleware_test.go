package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
)

type stubVerifier map[string]Identity

func (s stubVerifier) Verify(_ context.Context, tok string) (Identity, error) {
	id, ok := s[tok]
	if !ok {
		return Identity{}, errors.New("bad token")
	}
	return id, nil
}

var verifier = stubVerifier{
	"user-token":  {UID: "u1", Email: "u1@example.com"},
	"admin-token": {UID: "a1", Claims: map[string]any{"admin": true}},
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ownerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o, _ := CurrentOwner(r.Context())
		g, _ := GuestOwner(r.Context())
		w.Header().Set("X-Owner", o.String())
		w.Header().Set("X-Guest", g.String())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestResolveOwner(t *testing.T) {
	h := ResolveOwner(verifier)(ownerEcho())
	guest := uuid.NewString()

	t.Run("guest token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(GuestTokenHeader, guest)
		rec := serve(h, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "guest:"+guest, rec.Header().Get("X-Owner"))
	})

	t.Run("bearer wins and keeps guest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer user-token")
		req.Header.Set(GuestTokenHeader, guest)
		rec := serve(h, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user:u1", rec.Header().Get("X-Owner"))
		assert.Equal(t, "guest:"+guest, rec.Header().Get("X-Guest"))
	})

	t.Run("bad bearer is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		req.Header.Set(GuestTokenHeader, guest)
		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("malformed guest token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(GuestTokenHeader, "not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, serve(h, req).Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})
}

func TestAuthenticateAndRequireClaim(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := CurrentIdentity(r.Context())
		w.Header().Set("X-UID", id.UID)
	})
	h := Authenticate(verifier)(RequireClaim("admin")(ok))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"no claim", "Bearer user-token", http.StatusForbidden},
		{"admin", "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "a1", rec.Header().Get("X-UID"))
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal","message":"internal server error"}`, rec.Body.String())
}

func TestCurrentOwnerAbsent(t *testing.T) {
	_, ok := CurrentOwner(context.Background())
	assert.False(t, ok)

	u, err := cartdom.Registered("u9")
	require.NoError(t, err)
	ctx := context.WithValue(context.Background(), ctxKeyOwner, u)
	got, ok := CurrentOwner(ctx)
	assert.True(t, ok)
	assert.Equal(t, u, got)
}
