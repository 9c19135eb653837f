package http

import (
	"errors"
	"net/http"

	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/pkg/httpx"
	"github.com/parleyhq/parley/pkg/slogx"
)

// writeServiceError maps the service sentinel errors onto HTTP statuses.
// Everything unmapped is a 500 with a generic body; the real error only goes
// to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrUnknownUser):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrBadCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrLocked),
		errors.Is(err, service.ErrBestReplyExists):
		httpx.WriteError(w, http.StatusNotAcceptable, err.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
