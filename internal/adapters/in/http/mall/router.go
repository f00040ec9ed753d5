// internal/adapters/in/http/mall/router.go
package mall

import (
	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/middleware"
)

// Deps is the buyer-facing (mall) handler set.
type Deps struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Order    *OrderHandler
	Verifier middleware.TokenVerifier
}

// Register mounts /mall routes onto r.
func Register(r chi.Router, deps Deps) {
	r.Route("/mall", func(r chi.Router) {
		r.Post("/guest-token", issueGuestToken)

		r.Get("/products", deps.Catalog.listProducts)
		r.Get("/products/{id}", deps.Catalog.getProduct)
		r.Get("/categories", deps.Catalog.listCategories)
		r.Get("/categories/{id}", deps.Catalog.getCategory)

		r.Get("/orders/{id}/status", deps.Order.status)

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.ResolveOwner(deps.Verifier))

			r.Get("/cart", deps.Cart.get)
			r.Delete("/cart", deps.Cart.clear)
			r.Post("/cart/items", deps.Cart.addItem)
			r.Put("/cart/items", deps.Cart.updateItem)
			r.Delete("/cart/items", deps.Cart.removeItem)
			r.Post("/cart/merge", deps.Cart.merge)

			r.Post("/orders", deps.Order.checkout)
			r.Get("/orders", deps.Order.list)
			r.Get("/orders/{id}", deps.Order.get)
		})
	})
}
