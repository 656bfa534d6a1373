package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"nightmarket/internal/status"

	"github.com/pocketbase/pocketbase/apis"
)

// apiError maps service errors onto HTTP errors. Anything unrecognised is
// treated as a transient store failure the client may retry.
func apiError(err error, op string) error {
	switch {
	case errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrVendorNotFound):
		return apis.NewNotFoundError(err.Error(), nil)

	case errors.Is(err, status.ErrInvalidInput),
		errors.Is(err, status.ErrEventMismatch):
		return apis.NewBadRequestError(err.Error(), nil)

	case errors.Is(err, status.ErrTicketExists),
		errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, status.ErrEventHasTickets),
		errors.Is(err, status.ErrLockNotAcquired):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)

	case errors.Is(err, status.ErrInvalidSignature):
		return apis.NewUnauthorizedError(err.Error(), nil)
	}

	slog.Error("Request failed", "op", op, "error", err)
	return apis.NewApiError(http.StatusServiceUnavailable, "Temporary storage failure, please retry.", nil)
}
