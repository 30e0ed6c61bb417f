package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/booking"
)

// mapBookingError translates the booking error taxonomy into HTTP
// errors. Unknown errors become 500s with the message preserved.
func mapBookingError(err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, booking.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, booking.ErrCapacityExceeded):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		return huma.Error409Conflict(err.Error())
	default:
		return huma.Error500InternalServerError("Internal error: " + err.Error())
	}
}
