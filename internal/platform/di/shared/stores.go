// internal/platform/di/shared/stores.go
package shared

import (
	"context"
	"log/slog"

	fsout "storefront/internal/adapters/out/firestore"
	"storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/kafka"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/adapters/out/memory"
	"storefront/internal/adapters/out/redisstore"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/category"
	odom "storefront/internal/domain/order"
	pdom "storefront/internal/domain/product"
)

// Stores are the persistence ports picked for the configured backend.
type Stores struct {
	Categories catdom.Repository
	Products   pdom.Repository
	Carts      cartdom.Repository
	Orders     odom.Repository

	Idempotency usecase.IdempotencyStore
	StatusCache usecase.StatusCache

	// Images is nil when no bucket is configured.
	Images usecase.ImageStore
}

// NewStores wires repositories over Firestore or memory, and checkout
// state over Redis or memory.
func NewStores(inf *Infra) *Stores {
	s := &Stores{}

	if fs := inf.FirestoreClient(); fs != nil {
		cats := fsout.NewCategoryRepositoryFS(fs)
		products := fsout.NewProductRepositoryFS(fs, cats)
		s.Categories = cats
		s.Products = products
		s.Carts = fsout.NewCartRepositoryFS(fs)
		s.Orders = fsout.NewOrderRepositoryFS(fs, products)
	} else {
		cats := memory.NewCategoryRepository()
		products := memory.NewProductRepository(cats)
		s.Categories = cats
		s.Products = products
		s.Carts = memory.NewCartRepository()
		s.Orders = memory.NewOrderRepository(products)
	}

	if inf.Redis != nil {
		s.Idempotency = redisstore.NewIdempotencyStore(inf.Redis)
		s.StatusCache = redisstore.NewStatusCache(inf.Redis)
	} else {
		s.Idempotency = memory.NewIdempotencyStore()
		s.StatusCache = memory.NewStatusCache()
	}

	if inf.GCS != nil {
		img := gcs.NewImageStoreGCS(inf.GCS, inf.Config.GCSBucket)
		if base := inf.Config.GCSPublicBaseURL; base != "" {
			img.PublicBaseURL = base
		}
		s.Images = img
	}
	return s
}

// CartLimits reads the per-line quantity cap from config.
func (i *Infra) CartLimits() cartdom.Limits {
	return cartdom.Limits{MaxLineQuantity: i.Config.CartMaxLineQuantity}
}

// NewMailer returns a SendGrid-backed mailer, or a logging one when no API
// key is available.
func NewMailer(ctx context.Context, inf *Infra) usecase.Mailer {
	cfg := inf.Config
	key, err := inf.SendGridAPIKey(ctx)
	if err != nil {
		slog.Warn("[shared.mailer] sendgrid key unavailable; logging mail instead", "err", err)
	}
	if key == "" {
		return mail.NewOrderMailer(mail.LogClient{}, cfg.MailFrom)
	}
	return mail.NewOrderMailer(mail.NewSendGridClient(key, cfg.MailFromName), cfg.MailFrom)
}

// Publisher is an EventPublisher with a shutdown hook.
type Publisher struct {
	usecase.EventPublisher
	close func()
}

func (p *Publisher) Close() {
	if p != nil && p.close != nil {
		p.close()
	}
}

// NewPublisher publishes to Kafka when brokers are configured. Otherwise
// events are handed straight to a notifier in-process.
func NewPublisher(ctx context.Context, inf *Infra) *Publisher {
	cfg := inf.Config
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicOrders, 0)
		p.Start()
		slog.Info("[shared.publisher] kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopicOrders)
		return &Publisher{EventPublisher: p, close: p.Close}
	}
	n := usecase.NewNotifierUsecase(NewMailer(ctx, inf), cfg.ShopName)
	slog.Info("[shared.publisher] inline notifier (KAFKA_BROKERS empty)")
	return &Publisher{EventPublisher: usecase.NewInlinePublisher(n)}
}
