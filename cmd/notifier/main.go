// cmd/notifier/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/telemetry"
	notifierDI "storefront/internal/platform/di/notifier"
	shared "storefront/internal/platform/di/shared"
)

func main() {
	appcfg.LoadDotEnv()
	cfg := appcfg.Load("notifier")
	cfg.StoreBackend = appcfg.BackendMemory // no repositories here
	telemetry.InitLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Warn("[boot] tracer disabled", "err", err)
	}

	if err := run(ctx, cfg); err != nil {
		slog.Error("[boot] notifier stopped", "err", err)
		os.Exit(1)
	}

	if shutdownTracer != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}
	slog.Info("[boot] notifier stopped")
}

func run(ctx context.Context, cfg *appcfg.Config) error {
	initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	infra, err := shared.NewInfra(initCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := infra.Close(); err != nil {
			slog.Error("[boot] infra close error", "err", err)
		}
	}()

	cont, err := notifierDI.NewContainer(initCtx, infra)
	if err != nil {
		return err
	}
	slog.Info("[boot] consuming order events", "group", cfg.KafkaGroupID, "brokers", cfg.KafkaBrokers)
	return cont.Run(ctx)
}
