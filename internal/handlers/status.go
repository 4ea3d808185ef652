package handlers

import (
	"errors"
	"net/http"

	"newsletter-go/internal/models"
)

// StatusFor maps the outcome of a subscription attempt to its response code:
// nil is 200, a decoding or validation failure is 400, anything else is a
// store failure and 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrInvalidSubscription):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
