// internal/adapters/in/http/mall/cart_handler.go
package mall

import (
	"log/slog"
	"net/http"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves /mall/me/cart. The owner comes from
// middleware.ResolveOwner.
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type cartItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	Variants  cartdom.Variants `json:"selectedVariants"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
}

type addItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	Variants  cartdom.Variants `json:"selectedVariants"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
}

type removeItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	Variants  cartdom.Variants `json:"selectedVariants"`
}

// GET /mall/me/cart
func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.CurrentOwner(r.Context())
	c, err := h.uc.Get(r.Context(), owner)
	h.respond(w, r, c, err)
}

// DELETE /mall/me/cart
func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.CurrentOwner(r.Context())
	c, err := h.uc.Clear(r.Context(), owner)
	h.respond(w, r, c, err)
}

// POST /mall/me/cart/items
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	owner, _ := middleware.CurrentOwner(r.Context())
	c, err := h.uc.AddItem(r.Context(), owner, req.ProductID, req.Variants, req.Quantity)
	h.respond(w, r, c, err)
}

// PUT /mall/me/cart/items sets the quantity of one line; 0 removes it.
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	owner, _ := middleware.CurrentOwner(r.Context())
	c, err := h.uc.UpdateQuantity(r.Context(), owner, req.ProductID, req.Variants, req.Quantity)
	h.respond(w, r, c, err)
}

// DELETE /mall/me/cart/items
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	owner, _ := middleware.CurrentOwner(r.Context())
	c, err := h.uc.RemoveItem(r.Context(), owner, req.ProductID, req.Variants)
	h.respond(w, r, c, err)
}

// POST /mall/me/cart/merge folds the X-Guest-Token cart into the signed-in
// user's cart.
func (h *CartHandler) merge(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.CurrentOwner(r.Context())
	if owner.IsGuest() {
		httpx.WriteStatus(w, http.StatusUnauthorized, "sign in to merge a guest cart")
		return
	}
	guest, ok := middleware.GuestOwner(r.Context())
	if !ok {
		httpx.WriteStatus(w, http.StatusBadRequest, middleware.GuestTokenHeader+" is required")
		return
	}
	c, err := h.uc.MergeGuestIntoUser(r.Context(), guest, owner)
	if err == nil {
		slog.InfoContext(r.Context(), "[mall_cart_handler] guest cart merged", "user", owner.String(), "items", len(c.Items))
	}
	h.respond(w, r, c, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, c *cartdom.Cart, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
