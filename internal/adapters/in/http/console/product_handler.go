// internal/adapters/in/http/console/product_handler.go
package console

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	pdom "storefront/internal/domain/product"
)

// ProductHandler serves /console/products.
type ProductHandler struct {
	uc *usecase.CatalogUsecase
}

func NewProductHandler(uc *usecase.CatalogUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type createProductRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Description string             `json:"description" validate:"max=5000"`
	Price       *common.Money      `json:"price" validate:"required"`
	CategoryID  string             `json:"categoryId" validate:"required"`
	VariantAxes []pdom.VariantAxis `json:"variants" validate:"omitempty,dive"`
	Featured    bool               `json:"featured"`
}

type updateProductRequest struct {
	Name        *string             `json:"name" validate:"omitempty,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Price       *common.Money       `json:"price"`
	CategoryID  *string             `json:"categoryId"`
	VariantAxes *[]pdom.VariantAxis `json:"variants"`
	Featured    *bool               `json:"featured"`
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.ProductFilter(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	page, err := h.uc.List(r.Context(), f, httpx.PageRequest(r, pdom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), httpx.Populate(r)...)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.uc.Create(r.Context(), usecase.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		VariantAxes: req.VariantAxes,
		Featured:    req.Featured,
	})
	h.respond(w, r, http.StatusCreated, p, err)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), pdom.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		VariantAxes: req.VariantAxes,
		Featured:    req.Featured,
	})
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /console/products/{id}/images (multipart, field "file")
func (h *ProductHandler) attachImage(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer up.file.Close()

	p, err := h.uc.AttachImage(r.Context(), chi.URLParam(r, "id"), up.filename, up.contentType, up.file)
	if err == nil {
		slog.InfoContext(r.Context(), "[console_product_handler] image attached", "productId", p.ID, "images", len(p.Images))
	}
	h.respond(w, r, http.StatusCreated, p, err)
}

// DELETE /console/products/{id}/images/* where * is the (escaped) public id.
func (h *ProductHandler) detachImage(w http.ResponseWriter, r *http.Request) {
	publicID, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || publicID == "" {
		httpx.WriteStatus(w, http.StatusBadRequest, "image public id is required")
		return
	}
	p, err := h.uc.DetachImage(r.Context(), chi.URLParam(r, "id"), publicID)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *ProductHandler) respond(w http.ResponseWriter, r *http.Request, code int, p *pdom.Product, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, code, p)
}
