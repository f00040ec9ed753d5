// internal/adapters/in/http/console/router.go
package console

import (
	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/middleware"
)

// DefaultAdminClaim is the Firebase custom claim console callers need.
const DefaultAdminClaim = "admin"

// Deps is the admin-facing (console) handler set.
type Deps struct {
	Product    *ProductHandler
	Category   *CategoryHandler
	Order      *OrderHandler
	Verifier   middleware.TokenVerifier
	AdminClaim string
}

// Register mounts /console routes onto r. Every route needs an admin token.
func Register(r chi.Router, deps Deps) {
	claim := deps.AdminClaim
	if claim == "" {
		claim = DefaultAdminClaim
	}
	r.Route("/console", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier), middleware.RequireClaim(claim))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Product.list)
			r.Post("/", deps.Product.create)
			r.Get("/{id}", deps.Product.get)
			r.Put("/{id}", deps.Product.update)
			r.Delete("/{id}", deps.Product.delete)
			r.Post("/{id}/images", deps.Product.attachImage)
			r.Delete("/{id}/images/*", deps.Product.detachImage)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", deps.Category.list)
			r.Post("/", deps.Category.create)
			r.Get("/{id}", deps.Category.get)
			r.Put("/{id}", deps.Category.update)
			r.Delete("/{id}", deps.Category.delete)
			r.Put("/{id}/image", deps.Category.setImage)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", deps.Order.list)
			r.Get("/{id}", deps.Order.get)
			r.Patch("/{id}/status", deps.Order.updateStatus)
		})
	})
}
