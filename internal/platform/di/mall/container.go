// internal/platform/di/mall/container.go
package mall

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-chi/chi/v5"

	mallhttp "storefront/internal/adapters/in/http/mall"
	"storefront/internal/application/usecase"
	shared "storefront/internal/platform/di/shared"
)

var errNilInfra = errors.New("di.mall: infra is nil")

// Container is the mall (buyer-facing) DI container.
// Pure DI: build deps only; routing lives in adapters/in/http/mall.
type Container struct {
	Infra *shared.Infra

	CatalogUC  *usecase.CatalogUsecase
	CategoryUC *usecase.CategoryUsecase
	CartUC     *usecase.CartUsecase
	OrderUC    *usecase.OrderUsecase

	publisher *shared.Publisher
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		return nil, errNilInfra
	}
	stores := shared.NewStores(infra)
	limits := infra.CartLimits()
	pub := shared.NewPublisher(ctx, infra)

	c := &Container{
		Infra:      infra,
		CatalogUC:  usecase.NewCatalogUsecase(stores.Products, stores.Categories, stores.Images),
		CategoryUC: usecase.NewCategoryUsecase(stores.Categories, stores.Products, stores.Images),
		CartUC:     usecase.NewCartUsecase(stores.Carts, stores.Products, limits),
		OrderUC: usecase.NewOrderUsecase(stores.Orders, stores.Carts, stores.Products, limits, usecase.OrderDeps{
			Idempotency: stores.Idempotency,
			StatusCache: stores.StatusCache,
			Publisher:   pub,
			Producer:    infra.Config.ServiceName,
		}),
		publisher: pub,
	}
	slog.Info("[di.mall] container ready", "auth", infra.FirebaseAuth != nil)
	return c, nil
}

// Register mounts /mall routes onto r.
func Register(r chi.Router, c *Container) {
	if r == nil || c == nil {
		return
	}
	mallhttp.Register(r, mallhttp.Deps{
		Catalog:  mallhttp.NewCatalogHandler(c.CatalogUC, c.CategoryUC),
		Cart:     mallhttp.NewCartHandler(c.CartUC),
		Order:    mallhttp.NewOrderHandler(c.OrderUC),
		Verifier: c.Infra.Verifier(),
	})
}

// Close flushes queued events. Infra is closed by the caller.
func (c *Container) Close() {
	if c != nil {
		c.publisher.Close()
	}
}
