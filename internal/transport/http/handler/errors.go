package handler

import (
	"errors"
	"net/http"

	"github.com/admin-session-gate/internal/domain"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var rej *domain.RejectedError
	switch {
	case errors.As(err, &rej):
		if rej.StatusCode >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrGateClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func httpError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
