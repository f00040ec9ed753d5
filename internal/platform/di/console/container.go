// internal/platform/di/console/container.go
package console

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-chi/chi/v5"

	consolehttp "storefront/internal/adapters/in/http/console"
	"storefront/internal/application/usecase"
	shared "storefront/internal/platform/di/shared"
)

var errNilInfra = errors.New("di.console: infra is nil")

// Container is the console (admin-facing) DI container.
type Container struct {
	Infra *shared.Infra

	CatalogUC  *usecase.CatalogUsecase
	CategoryUC *usecase.CategoryUsecase
	OrderUC    *usecase.OrderUsecase

	publisher *shared.Publisher
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		return nil, errNilInfra
	}
	stores := shared.NewStores(infra)
	if stores.Images == nil {
		slog.Warn("[di.console] GCS_BUCKET is empty; image uploads will fail")
	}
	pub := shared.NewPublisher(ctx, infra)

	c := &Container{
		Infra:      infra,
		CatalogUC:  usecase.NewCatalogUsecase(stores.Products, stores.Categories, stores.Images),
		CategoryUC: usecase.NewCategoryUsecase(stores.Categories, stores.Products, stores.Images),
		OrderUC: usecase.NewOrderUsecase(stores.Orders, stores.Carts, stores.Products, infra.CartLimits(), usecase.OrderDeps{
			StatusCache: stores.StatusCache,
			Publisher:   pub,
			Producer:    infra.Config.ServiceName,
		}),
		publisher: pub,
	}
	return c, nil
}

// Register mounts /console routes onto r.
func Register(r chi.Router, c *Container) {
	if r == nil || c == nil {
		return
	}
	consolehttp.Register(r, consolehttp.Deps{
		Product:    consolehttp.NewProductHandler(c.CatalogUC),
		Category:   consolehttp.NewCategoryHandler(c.CategoryUC),
		Order:      consolehttp.NewOrderHandler(c.OrderUC),
		Verifier:   c.Infra.Verifier(),
		AdminClaim: c.Infra.Config.AdminClaim,
	})
}

func (c *Container) Close() {
	if c != nil {
		c.publisher.Close()
	}
}
