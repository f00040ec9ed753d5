// internal/adapters/in/http/console/order_handler.go
package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	odom "storefront/internal/domain/order"
)

// OrderHandler serves /console/orders.
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.OrderFilter(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		f.Owner = owner
	}
	page, err := h.uc.ListAll(r.Context(), f, httpx.PageRequest(r, odom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), httpx.Populate(r)...)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

// PATCH /console/orders/{id}/status
func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	to, err := odom.ParseStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	by := ""
	if id, ok := middleware.CurrentIdentity(r.Context()); ok {
		by = id.UID
	}
	o, err := h.uc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), to, by)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}
