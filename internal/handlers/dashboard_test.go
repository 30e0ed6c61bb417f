package handlers

import (
	"context"
	"testing"

	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/booking"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
)

func TestHandleDashboard(t *testing.T) {
	db := setupDB(t)
	user, date := seedBooking(t, db, 10)
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	manager := booking.NewManager(db)
	handler := NewDashboardHandler(db, authHandler)

	first, err := manager.CreateReservation(context.Background(), user.ID, date.ID, 4, false, "")
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if _, err := manager.ChangeStatus(context.Background(), first.ID, models.ReservationConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	second, err := manager.CreateReservation(context.Background(), user.ID, date.ID, 2, false, "")
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if _, err := manager.ChangeStatus(context.Background(), second.ID, models.ReservationCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	req := &DashboardRequest{}
	req.Cookie = authCookieFor(t, authHandler, admin.ID)
	resp, err := handler.HandleDashboard(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleDashboard returned error: %v", err)
	}

	if resp.Body.Trips != 1 {
		t.Errorf("expected 1 trip, got %d", resp.Body.Trips)
	}
	if resp.Body.UpcomingDepartures != 1 {
		t.Errorf("expected 1 upcoming departure, got %d", resp.Body.UpcomingDepartures)
	}
	if resp.Body.ReservationsByStatus["confirmed"] != 1 {
		t.Errorf("expected 1 confirmed, got %d", resp.Body.ReservationsByStatus["confirmed"])
	}
	if resp.Body.ReservationsByStatus["cancelled"] != 1 {
		t.Errorf("expected 1 cancelled, got %d", resp.Body.ReservationsByStatus["cancelled"])
	}

	if len(resp.Body.Occupancy) != 1 {
		t.Fatalf("expected 1 occupancy row, got %d", len(resp.Body.Occupancy))
	}
	row := resp.Body.Occupancy[0]
	if row.OccupiedSeats != 4 || row.RemainingSeats != 6 {
		t.Errorf("expected 4 occupied / 6 remaining, got %d / %d", row.OccupiedSeats, row.RemainingSeats)
	}

	// Dashboard is admin-only.
	req.Cookie = authCookieFor(t, authHandler, user.ID)
	if _, err := handler.HandleDashboard(context.Background(), req); err == nil {
		t.Error("expected error for non-admin")
	}
}
