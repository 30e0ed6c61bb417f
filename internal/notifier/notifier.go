package notifier

import (
	"github.com/trekkingar/trekkingar-api/internal/models"
)

// Notifier informs interested parties about reservation changes.
// Delivery failures are logged by callers and never roll back the
// status transition that triggered them.
type Notifier interface {
	NotifyReservation(user models.User, reservation models.Reservation, date models.TripDate) error
}
