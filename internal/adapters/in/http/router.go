// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/adapters/in/http/middleware"
)

// RequestTimeout bounds one request end to end.
const RequestTimeout = 15 * time.Second

// NewRouter builds the middleware chain shared by every binary and mounts
// /healthz. Order matters: CORS wraps Recover so panics still get CORS
// headers.
func NewRouter(corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP)
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.Recover)
	r.Use(chimw.Timeout(RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Instrument wraps h with an otelhttp server span per request.
func Instrument(h http.Handler, service string) http.Handler {
	return otelhttp.NewHandler(h, service,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
