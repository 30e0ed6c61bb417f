package booking

import "errors"

// Error kinds surfaced by the booking manager. Handlers map these to
// HTTP statuses with errors.Is; messages wrapped around them stay
// user-displayable.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid status transition")
)
