package models

import (
	"testing"
)

func TestReservationStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{ReservationPending, ReservationConfirmed, true},
		{ReservationPending, ReservationCancelled, true},
		{ReservationPending, ReservationInProgress, false},
		{ReservationPending, ReservationCompleted, false},
		{ReservationConfirmed, ReservationInProgress, true},
		{ReservationConfirmed, ReservationCompleted, true},
		{ReservationConfirmed, ReservationCancelled, true},
		{ReservationConfirmed, ReservationPending, false},
		{ReservationInProgress, ReservationCompleted, true},
		{ReservationInProgress, ReservationCancelled, false},
		{ReservationCompleted, ReservationCancelled, false},
		{ReservationCancelled, ReservationConfirmed, false},
		{ReservationCancelled, ReservationPending, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected allowed=%v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

func TestReservationStatusOccupies(t *testing.T) {
	for _, s := range []ReservationStatus{ReservationPending, ReservationConfirmed, ReservationInProgress, ReservationCompleted} {
		if !s.Occupies() {
			t.Errorf("%s should occupy seats", s)
		}
	}
	if ReservationCancelled.Occupies() {
		t.Error("cancelled should not occupy seats")
	}
}

func TestParseReservationStatus(t *testing.T) {
	if _, err := ParseReservationStatus("confirmed"); err != nil {
		t.Errorf("confirmed should parse: %v", err)
	}
	if _, err := ParseReservationStatus("paid"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	if !ReservationCompleted.IsTerminal() || !ReservationCancelled.IsTerminal() {
		t.Error("completed and cancelled should be terminal")
	}
	if ReservationPending.IsTerminal() || ReservationConfirmed.IsTerminal() {
		t.Error("pending and confirmed should not be terminal")
	}
}
