// internal/platform/server/server.go
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	httpin "storefront/internal/adapters/in/http"
	appcfg "storefront/internal/infra/config"
)

const (
	initTimeout     = 2 * time.Minute
	shutdownTimeout = 25 * time.Second
)

// AtomicHandler swaps the underlying handler at runtime.
type AtomicHandler struct {
	v atomic.Value // http.Handler
}

func NewAtomicHandler(initial http.Handler) *AtomicHandler {
	h := &AtomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	h.v.Store(initial)
	return h
}

func (h *AtomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *AtomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.v.Load().(http.Handler).ServeHTTP(w, r)
}

// Mount adds routes onto the shared router.
type Mount func(r chi.Router)

// Build assembles a binary's dependencies. It runs in the background while
// /healthz is already served. The returned cleanup runs on shutdown after
// the server stopped accepting requests.
type Build func(ctx context.Context) (Mount, func(), error)

// Run listens on cfg.Addr, serving /healthz at once and the full router
// once build succeeds. It returns after SIGINT/SIGTERM and a graceful
// shutdown.
func Run(cfg *appcfg.Config, build Build) {
	newRouter := func() *chi.Mux { return httpin.NewRouter(cfg.CORSAllowedOrigins) }
	switcher := NewAtomicHandler(httpin.Instrument(newRouter(), cfg.ServiceName))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           switcher,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var cleanup atomic.Value // func()
	shuttingDown := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		slog.Info("[boot] received signal; shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("[boot] server shutdown error", "err", err)
		}
		if fn, ok := cleanup.Load().(func()); ok && fn != nil {
			fn()
		}
		close(stopped)
	}()

	go func() {
		slog.Info("[boot] listening", "addr", srv.Addr, "service", cfg.ServiceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[boot] server error", "err", err)
			os.Exit(1)
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()

		mount, done, err := build(ctx)
		if err != nil {
			slog.Error("[boot] init failed; serving /healthz only", "err", err)
			return
		}
		select {
		case <-shuttingDown:
			if done != nil {
				done()
			}
			return
		default:
		}
		cleanup.Store(done)

		r := newRouter()
		mount(r)
		switcher.Store(httpin.Instrument(r, cfg.ServiceName))
		slog.Info("[boot] handler switched to full router")
	}()

	<-stopped
	slog.Info("[boot] server stopped")
}
