// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"storefront/internal/adapters/in/http/httpx"
	cartdom "storefront/internal/domain/cart"
)

// GuestTokenHeader carries the device token of an anonymous shopper.
const GuestTokenHeader = "X-Guest-Token"

// Identity is a verified caller.
type Identity struct {
	UID    string
	Email  string
	Claims map[string]any
}

// TokenVerifier checks a bearer ID token.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	Client *fbauth.Client
}

func (v FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	if v.Client == nil {
		return Identity{}, errors.New("firebase auth client is nil")
	}
	tok, err := v.Client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, err
	}
	id := Identity{UID: strings.TrimSpace(tok.UID), Claims: tok.Claims}
	if e, ok := tok.Claims["email"].(string); ok {
		id.Email = strings.TrimSpace(e)
	}
	return id, nil
}

// context key は string を使わず独自型
type ctxKey struct{ name string }

var (
	ctxKeyIdentity = ctxKey{name: "identity"}
	ctxKeyOwner    = ctxKey{name: "owner"}
	ctxKeyGuest    = ctxKey{name: "guestOwner"}
)

// bearerToken returns the token and whether an Authorization header was sent.
func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return "", true
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), true
}

// Authenticate requires a valid bearer token.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				httpx.WriteStatus(w, http.StatusServiceUnavailable, "auth is not configured")
				return
			}
			tok, _ := bearerToken(r)
			if tok == "" {
				httpx.WriteStatus(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			id, err := v.Verify(r.Context(), tok)
			if err != nil || id.UID == "" {
				slog.WarnContext(r.Context(), "[auth] token rejected", "err", err)
				httpx.WriteStatus(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, id)))
		})
	}
}

// RequireClaim lets through identities whose claim is true. It must run
// after Authenticate.
func RequireClaim(claim string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentIdentity(r.Context())
			if !ok {
				httpx.WriteStatus(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if b, _ := id.Claims[claim].(bool); !b {
				httpx.WriteStatus(w, http.StatusForbidden, "missing "+claim+" claim")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveOwner works out whose cart a mall request acts on.
//
//   - Authorization: Bearer <ID_TOKEN>  -> registered user
//   - X-Guest-Token: <uuid>             -> guest
//
// A bearer request that also carries a valid guest token keeps the guest
// key in context for the merge endpoint. A bad bearer is rejected instead
// of silently falling back to the guest.
func ResolveOwner(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var guest cartdom.OwnerKey
			if raw := strings.TrimSpace(r.Header.Get(GuestTokenHeader)); raw != "" {
				g, err := cartdom.Guest(raw)
				if err != nil {
					httpx.WriteError(w, r, err)
					return
				}
				guest = g
				ctx = context.WithValue(ctx, ctxKeyGuest, g)
			}

			tok, sent := bearerToken(r)
			switch {
			case sent:
				if v == nil || tok == "" {
					httpx.WriteStatus(w, http.StatusUnauthorized, "invalid bearer token")
					return
				}
				id, err := v.Verify(ctx, tok)
				if err != nil || id.UID == "" {
					slog.WarnContext(ctx, "[auth] token rejected", "err", err)
					httpx.WriteStatus(w, http.StatusUnauthorized, "invalid token")
					return
				}
				owner, err := cartdom.Registered(id.UID)
				if err != nil {
					httpx.WriteError(w, r, err)
					return
				}
				ctx = context.WithValue(ctx, ctxKeyIdentity, id)
				ctx = context.WithValue(ctx, ctxKeyOwner, owner)
			case !guest.IsZero():
				ctx = context.WithValue(ctx, ctxKeyOwner, guest)
			default:
				httpx.WriteStatus(w, http.StatusUnauthorized, "bearer token or "+GuestTokenHeader+" required")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok && id.UID != ""
}

func CurrentOwner(ctx context.Context) (cartdom.OwnerKey, bool) {
	o, ok := ctx.Value(ctxKeyOwner).(cartdom.OwnerKey)
	return o, ok && !o.IsZero()
}

// GuestOwner is the X-Guest-Token owner, even when a bearer was also sent.
func GuestOwner(ctx context.Context) (cartdom.OwnerKey, bool) {
	o, ok := ctx.Value(ctxKeyGuest).(cartdom.OwnerKey)
	return o, ok && !o.IsZero()
}

// WithIdentity is used by tests and by callers that authenticate elsewhere.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}
