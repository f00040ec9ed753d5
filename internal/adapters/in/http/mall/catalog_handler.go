// internal/adapters/in/http/mall/catalog_handler.go
package mall

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/application/usecase"
	catdom "storefront/internal/domain/category"
	pdom "storefront/internal/domain/product"
)

// CatalogHandler serves read-only product and category endpoints.
type CatalogHandler struct {
	products   *usecase.CatalogUsecase
	categories *usecase.CategoryUsecase
}

func NewCatalogHandler(products *usecase.CatalogUsecase, categories *usecase.CategoryUsecase) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories}
}

// GET /mall/products
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ProductFilter(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	page, err := h.products.List(r.Context(), f, httpx.PageRequest(r, pdom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// GET /mall/products/{id}
func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"), httpx.Populate(r)...)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// GET /mall/categories
func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	page, err := h.categories.List(r.Context(), httpx.CategoryFilter(r), httpx.PageRequest(r, catdom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// GET /mall/categories/{id}
func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"), httpx.Populate(r)...)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
