package controller

import (
	"errors"
	"net/http"

	showrepo "github.com/cinesync/server/internal/repository/show"
	"github.com/cinesync/server/internal/service/auth"
	showservice "github.com/cinesync/server/internal/service/show"
	"github.com/cinesync/server/internal/service/watch"
	"github.com/cinesync/server/pkg/rest"
)

// serviceError maps service sentinels to HTTP statuses. Anything unknown is
// logged and hidden behind a 500.
func (c controller) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, watch.ErrRoomNotFound),
		errors.Is(err, watch.ErrSocketNotFound),
		errors.Is(err, showrepo.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, watch.ErrRoomAlreadyStarted),
		errors.Is(err, watch.ErrRoomAlreadyFinished),
		errors.Is(err, showservice.ErrPassCodeInUse),
		errors.Is(err, showservice.ErrNotResubmittable):
		status = http.StatusConflict
	case errors.Is(err, showservice.ErrStartTimeTooEarly):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	default:
		c.logger.ErrorContext(r.Context(), "unhandled service error", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	c.logger.DebugContext(r.Context(), "request rejected", "status", status, "error", err)
	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}
