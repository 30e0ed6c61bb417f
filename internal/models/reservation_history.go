package models

import (
	"gorm.io/gorm"
)

// ReservationHistory is an append-only snapshot written on every
// reservation create or status change, for the admin audit trail.
type ReservationHistory struct {
	gorm.Model
	ReservationID   uint              `gorm:"index" json:"reservation_id"`
	UserID          uint              `json:"user_id"`
	TripDateID      uint              `json:"trip_date_id"`
	Quantity        int               `json:"quantity"`
	Status          ReservationStatus `gorm:"type:varchar(32)" json:"status"`
	TotalPriceCents int64             `json:"total_price_cents"`
}
