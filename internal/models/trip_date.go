package models

import (
	"time"

	"gorm.io/gorm"
)

type TripDateStatus string

const (
	TripDateAvailable TripDateStatus = "available"
	TripDateFull      TripDateStatus = "full"
	TripDateCancelled TripDateStatus = "cancelled"
)

// TripDate is one scheduled departure of a trip with its own seat pool.
// Occupancy is derived from reservations; Status only caches the
// available/full distinction and is refreshed alongside every
// reservation write. Cancelled is authoritative for blocking bookings.
type TripDate struct {
	gorm.Model
	TripID     uint           `gorm:"index" json:"trip_id"`
	Trip       Trip           `json:"trip"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	TotalSeats int            `json:"total_seats"`
	PriceCents *int64         `json:"price_cents,omitempty"` // overrides Trip.BasePriceCents when set
	Status     TripDateStatus `gorm:"type:varchar(32);default:available" json:"status"`
	Notes      string         `json:"notes"`
}

// SeatPriceCents returns the per-seat price for this departure, falling
// back to the trip's base price when no override is set.
func (d *TripDate) SeatPriceCents() int64 {
	if d.PriceCents != nil {
		return *d.PriceCents
	}
	return d.Trip.BasePriceCents
}
