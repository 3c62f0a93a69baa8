package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orderitems/internal/service/models/apperr"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON writes body with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "Error writing response", "error", err)
	}
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrLockTimeout), errors.Is(err, apperr.ErrConnectivity):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an ErrorBody. Unclassified and wrapped driver errors
// are reported as a generic internal error and logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	detail := err.Error()
	if !apperr.Public(err) {
		detail = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "status", status, "error", err)
	}
	if apperr.Retryable(err) {
		w.Header().Set("Retry-After", "1")
	}

	JSON(w, r, status, ErrorBody{Detail: detail})
}
