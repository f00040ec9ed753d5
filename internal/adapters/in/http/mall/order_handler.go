// internal/adapters/in/http/mall/order_handler.go
package mall

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	odom "storefront/internal/domain/order"
)

// IdempotencyKeyHeader makes checkout retries safe.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler serves checkout and the shopper's own orders.
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type addressRequest struct {
	FullName   string `json:"fullName" validate:"required,max=200"`
	Phone      string `json:"phone" validate:"omitempty,max=40"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

type checkoutRequest struct {
	Email    string         `json:"email" validate:"omitempty,email"`
	Shipping addressRequest `json:"shippingAddress"`
	Note     string         `json:"note" validate:"omitempty,max=1000"`
}

func (a addressRequest) toDomain() odom.Address {
	return odom.Address{
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    strings.ToUpper(a.Country),
	}
}

// POST /mall/me/orders
func (h *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	owner, _ := middleware.CurrentOwner(r.Context())

	email := strings.TrimSpace(req.Email)
	if email == "" {
		if id, ok := middleware.CurrentIdentity(r.Context()); ok {
			email = id.Email
		}
	}

	o, err := h.uc.Checkout(r.Context(), owner, usecase.CheckoutInput{
		Email:          email,
		Shipping:       req.Shipping.toDomain(),
		Note:           req.Note,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, o)
}

// GET /mall/me/orders
func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := httpx.OrderFilter(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	owner, _ := middleware.CurrentOwner(r.Context())
	page, err := h.uc.ListForOwner(r.Context(), owner, f, httpx.PageRequest(r, odom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// GET /mall/me/orders/{id}
func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.CurrentOwner(r.Context())
	o, err := h.uc.GetForOwner(r.Context(), owner, chi.URLParam(r, "id"), httpx.Populate(r)...)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

type statusResponse struct {
	OrderID string      `json:"orderId"`
	Status  odom.Status `json:"status"`
}

// GET /mall/orders/{id}/status is public; it reveals nothing but the status.
func (h *OrderHandler) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.uc.Status(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusResponse{OrderID: id, Status: s})
}

type guestTokenResponse struct {
	GuestToken string `json:"guestToken"`
}

// POST /mall/guest-token
func issueGuestToken(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusCreated, guestTokenResponse{GuestToken: cartdom.NewGuestToken()})
}
