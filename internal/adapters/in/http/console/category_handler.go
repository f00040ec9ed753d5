// internal/adapters/in/http/console/category_handler.go
package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/adapters/in/http/httpx"
	"storefront/internal/application/usecase"
	catdom "storefront/internal/domain/category"
)

// CategoryHandler serves /console/categories.
type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    string `json:"parentId"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ParentID    *string `json:"parentId"`
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.uc.List(r.Context(), httpx.CategoryFilter(r), httpx.PageRequest(r, catdom.SortableFields...))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *CategoryHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"), httpx.Populate(r)...)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.uc.Create(r.Context(), usecase.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), catdom.Patch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /console/categories/{id}/image (multipart, field "file")
func (h *CategoryHandler) setImage(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer up.file.Close()

	c, err := h.uc.SetImage(r.Context(), chi.URLParam(r, "id"), up.filename, up.contentType, up.file)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *CategoryHandler) respond(w http.ResponseWriter, r *http.Request, code int, c *catdom.Category, err error) {
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, code, c)
}
