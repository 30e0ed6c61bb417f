package models

import (
	"fmt"

	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationConfirmed  ReservationStatus = "confirmed"
	ReservationInProgress ReservationStatus = "in_progress"
	ReservationCompleted  ReservationStatus = "completed"
	ReservationCancelled  ReservationStatus = "cancelled"
)

// validTransitions is the single source of truth for the reservation
// state machine. Date-window conditions (in_progress only inside the
// trip window, completed only after it) are checked by the booking
// manager on top of this table.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:    {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed:  {ReservationInProgress, ReservationCompleted, ReservationCancelled},
	ReservationInProgress: {ReservationCompleted},
	ReservationCompleted:  {},
	ReservationCancelled:  {},
}

func (s ReservationStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine allows moving from
// this status to target.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Occupies reports whether a reservation in this status holds seats
// against its trip date. Only cancelled reservations release seats.
func (s ReservationStatus) Occupies() bool {
	return s != ReservationCancelled
}

func (s ReservationStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s ReservationStatus) String() string {
	return string(s)
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reservation status: %s", s)
	}
	return status, nil
}

// OccupyingStatuses lists the statuses whose quantities count toward a
// trip date's occupied seats.
func OccupyingStatuses() []ReservationStatus {
	return []ReservationStatus{
		ReservationPending,
		ReservationConfirmed,
		ReservationInProgress,
		ReservationCompleted,
	}
}

type Reservation struct {
	gorm.Model
	Reference       string            `gorm:"uniqueIndex" json:"reference"` // public UUID, safe to expose
	UserID          uint              `gorm:"index" json:"user_id"`
	User            User              `json:"user"`
	TripDateID      uint              `gorm:"index" json:"trip_date_id"`
	TripDate        TripDate          `json:"trip_date"`
	Quantity        int               `json:"quantity"`
	Status          ReservationStatus `gorm:"type:varchar(32);index" json:"status"`
	TotalPriceCents int64             `json:"total_price_cents"`
	Observations    string            `json:"observations"`
}
