// cmd/mall/main.go
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/telemetry"
	mallDI "storefront/internal/platform/di/mall"
	shared "storefront/internal/platform/di/shared"
	"storefront/internal/platform/server"
)

func main() {
	appcfg.LoadDotEnv()
	cfg := appcfg.Load("mall")
	telemetry.InitLogger(cfg.ServiceName, cfg.LogLevel)

	shutdownTracer, err := telemetry.SetupTracer(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Warn("[boot] tracer disabled", "err", err)
	}

	server.Run(cfg, func(ctx context.Context) (server.Mount, func(), error) {
		infra, err := shared.NewInfra(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cont, err := mallDI.NewContainer(ctx, infra)
		if err != nil {
			_ = infra.Close()
			return nil, nil, err
		}
		mount := func(r chi.Router) { mallDI.Register(r, cont) }
		cleanup := func() {
			cont.Close()
			if err := infra.Close(); err != nil {
				slog.Error("[boot] infra close error", "err", err)
			}
		}
		return mount, cleanup, nil
	})

	if shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			slog.Error("[boot] tracer shutdown error", "err", err)
		}
	}
}
