// internal/adapters/in/http/httpx/response.go
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/domain/common"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps the domain error taxonomy to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status StatusFor picks. Upstream failures
// are logged and reported without their detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	body := ErrorBody{Error: errorCode(code), Message: err.Error()}
	if code == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "[httpx] upstream failure",
			"method", r.Method, "path", r.URL.Path, "err", err)
		body.Message = "internal server error"
	}
	WriteJSON(w, code, body)
}

// WriteStatus writes a plain error body for failures that never reach a
// use case (auth, unsupported media).
func WriteStatus(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorBody{Error: errorCode(code), Message: strings.TrimSpace(msg)})
}

func errorCode(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "internal"
	}
}
