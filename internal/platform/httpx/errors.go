package httpx

import (
	"errors"
	"net/http"

	"github.com/ubademy/users-service/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Unexpected errors become a
// 500 with the raw underlying message; this service sits behind an internal
// boundary and deliberately keeps the original transparency.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Message(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Message(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Message(w, http.StatusUnauthorized, err.Error())
	default:
		Message(w, http.StatusInternalServerError, err.Error())
	}
}
