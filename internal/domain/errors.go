package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by the listing, trade and vouch managers.
// Handlers map these to HTTP statuses; everything else is a 500.
var (
	ErrValidation       = errors.New("invalid input")
	ErrQuotaExceeded    = errors.New("listing quota exceeded")
	ErrNoPendingListing = errors.New("no pending listing")
	ErrExpired          = errors.New("expired")
	ErrTooManyImages    = errors.New("too many images")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSelfTrade        = errors.New("cannot trade with yourself")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrSessionClosed    = errors.New("trade session already closed")
)

// HTTPStatus maps a manager error to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrTooManyImages),
		errors.Is(err, ErrSelfTrade),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrSessionClosed):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPendingListing),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
