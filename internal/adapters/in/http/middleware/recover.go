// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"storefront/internal/adapters/in/http/httpx"
)

// Recover turns a handler panic into a JSON 500.
// CORS must wrap this so the error response still carries its headers.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "[recover] PANIC",
					"method", r.Method, "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				httpx.WriteStatus(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
