package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/gorm"
)

// Manager enforces seat capacity and the reservation state machine.
// Every check-and-write sequence runs inside one database transaction;
// serializing concurrent bookings for the same trip date is the
// store's job, not re-implemented here.
type Manager struct {
	db  *gorm.DB
	now func() time.Time
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

// occupiedSeatsTx sums the quantities of all seat-holding reservations
// for a trip date. Cancelled reservations are excluded: their seats
// are released.
func occupiedSeatsTx(tx *gorm.DB, tripDateID uint) (int, error) {
	var occupied int
	err := tx.Model(&models.Reservation{}).
		Where("trip_date_id = ? AND status IN ?", tripDateID, models.OccupyingStatuses()).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&occupied).Error
	return occupied, err
}

// OccupiedSeats returns how many seats are held against the trip date.
func (m *Manager) OccupiedSeats(ctx context.Context, tripDateID uint) (int, error) {
	tx := m.db.WithContext(ctx)
	if err := tx.First(&models.TripDate{}, tripDateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: trip date %d", ErrNotFound, tripDateID)
		}
		return 0, err
	}
	return occupiedSeatsTx(tx, tripDateID)
}

// RemainingSeats returns total minus occupied seats, floored at zero.
// Occupancy above the total is a data-integrity anomaly; it is logged
// and reported as zero remaining rather than a negative number.
func (m *Manager) RemainingSeats(ctx context.Context, tripDateID uint) (int, error) {
	tx := m.db.WithContext(ctx)
	var date models.TripDate
	if err := tx.First(&date, tripDateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: trip date %d", ErrNotFound, tripDateID)
		}
		return 0, err
	}
	occupied, err := occupiedSeatsTx(tx, tripDateID)
	if err != nil {
		return 0, err
	}
	remaining := date.TotalSeats - occupied
	if remaining < 0 {
		log.Printf("consistency alarm: trip date %d has %d seats occupied out of %d total", tripDateID, occupied, date.TotalSeats)
		return 0, nil
	}
	return remaining, nil
}

// CreateReservation books quantity seats on a trip date for a user.
// The reservation starts pending, or confirmed when payment was
// already captured synchronously.
func (m *Manager) CreateReservation(ctx context.Context, userID, tripDateID uint, quantity int, confirmed bool, observations string) (*models.Reservation, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	var reservation models.Reservation
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var date models.TripDate
		if err := tx.Preload("Trip").First(&date, tripDateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trip date %d", ErrNotFound, tripDateID)
			}
			return err
		}
		if date.Status == models.TripDateCancelled {
			return fmt.Errorf("%w: trip date %d is cancelled", ErrInvalidInput, tripDateID)
		}

		occupied, err := occupiedSeatsTx(tx, tripDateID)
		if err != nil {
			return err
		}
		if date.TotalSeats-occupied < quantity {
			return fmt.Errorf("%w: %d seats requested, %d remaining", ErrCapacityExceeded, quantity, max(date.TotalSeats-occupied, 0))
		}

		status := models.ReservationPending
		if confirmed {
			status = models.ReservationConfirmed
		}

		reservation = models.Reservation{
			Reference:       uuid.NewString(),
			UserID:          userID,
			TripDateID:      tripDateID,
			Quantity:        quantity,
			Status:          status,
			TotalPriceCents: date.SeatPriceCents() * int64(quantity),
			Observations:    observations,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		if err := snapshotTx(tx, &reservation); err != nil {
			return err
		}

		return refreshDateStatusTx(tx, &date)
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ChangeStatus moves a reservation through the state machine. Changing
// to the current status is a no-op success, so retried confirmations
// never double-count occupancy. Transitions into a seat-holding state
// re-verify capacity, excluding the reservation's own prior hold.
func (m *Manager) ChangeStatus(ctx context.Context, reservationID uint, newStatus models.ReservationStatus) (*models.Reservation, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	var reservation models.Reservation
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return err
		}
		if reservation.Status == newStatus {
			return nil
		}
		if !reservation.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reservation.Status, newStatus)
		}

		var date models.TripDate
		if err := tx.First(&date, reservation.TripDateID).Error; err != nil {
			return err
		}

		now := m.now()
		switch newStatus {
		case models.ReservationInProgress:
			if now.Before(date.StartDate) || now.After(date.EndDate) {
				return fmt.Errorf("%w: %s -> %s outside the trip window", ErrInvalidTransition, reservation.Status, newStatus)
			}
		case models.ReservationCompleted:
			if !now.After(date.EndDate) {
				return fmt.Errorf("%w: %s -> %s before the trip has ended", ErrInvalidTransition, reservation.Status, newStatus)
			}
		}

		if newStatus.Occupies() {
			occupied, err := occupiedSeatsTx(tx, reservation.TripDateID)
			if err != nil {
				return err
			}
			if reservation.Status.Occupies() {
				occupied -= reservation.Quantity
			}
			if occupied+reservation.Quantity > date.TotalSeats {
				return fmt.Errorf("%w: %d seats requested, %d remaining", ErrCapacityExceeded, reservation.Quantity, max(date.TotalSeats-occupied, 0))
			}
		}

		reservation.Status = newStatus
		if err := tx.Model(&reservation).Update("status", newStatus).Error; err != nil {
			return err
		}

		if err := snapshotTx(tx, &reservation); err != nil {
			return err
		}

		return refreshDateStatusTx(tx, &date)
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateTotalSeats resizes a trip date's seat pool. Shrinking below
// the current occupancy is rejected.
func (m *Manager) UpdateTotalSeats(ctx context.Context, tripDateID uint, totalSeats int) error {
	if totalSeats < 1 {
		return fmt.Errorf("%w: total seats must be at least 1", ErrInvalidInput)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var date models.TripDate
		if err := tx.First(&date, tripDateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trip date %d", ErrNotFound, tripDateID)
			}
			return err
		}
		occupied, err := occupiedSeatsTx(tx, tripDateID)
		if err != nil {
			return err
		}
		if occupied > totalSeats {
			return fmt.Errorf("%w: %d seats already occupied, cannot shrink to %d", ErrCapacityExceeded, occupied, totalSeats)
		}
		date.TotalSeats = totalSeats
		if err := tx.Model(&date).Update("total_seats", totalSeats).Error; err != nil {
			return err
		}
		return refreshDateStatusTx(tx, &date)
	})
}

// DeleteTripDate removes a departure; only allowed once no seats are
// held against it.
func (m *Manager) DeleteTripDate(ctx context.Context, tripDateID uint) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var date models.TripDate
		if err := tx.First(&date, tripDateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trip date %d", ErrNotFound, tripDateID)
			}
			return err
		}
		occupied, err := occupiedSeatsTx(tx, tripDateID)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return fmt.Errorf("%w: trip date %d still has %d seats occupied", ErrInvalidInput, tripDateID, occupied)
		}
		return tx.Delete(&date).Error
	})
}

// snapshotTx appends an audit row mirroring the reservation after a write.
func snapshotTx(tx *gorm.DB, r *models.Reservation) error {
	history := models.ReservationHistory{
		ReservationID:   r.ID,
		UserID:          r.UserID,
		TripDateID:      r.TripDateID,
		Quantity:        r.Quantity,
		Status:          r.Status,
		TotalPriceCents: r.TotalPriceCents,
	}
	return tx.Create(&history).Error
}

// refreshDateStatusTx recomputes the cached available/full flag from
// the reservation rows, in the same transaction as the write that may
// have changed occupancy. Cancelled dates are left alone.
func refreshDateStatusTx(tx *gorm.DB, date *models.TripDate) error {
	if date.Status == models.TripDateCancelled {
		return nil
	}
	occupied, err := occupiedSeatsTx(tx, date.ID)
	if err != nil {
		return err
	}
	status := models.TripDateAvailable
	if occupied >= date.TotalSeats {
		status = models.TripDateFull
	}
	if status == date.Status {
		return nil
	}
	date.Status = status
	return tx.Model(date).Update("status", status).Error
}
