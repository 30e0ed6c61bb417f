package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/booking"
	"github.com/trekkingar/trekkingar-api/internal/cache"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
)

func TestTripCatalog(t *testing.T) {
	db := setupDB(t)
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	handler := NewTripHandler(db, authHandler, cache.NewCatalog(nil, 0))

	create := &CreateTripRequest{}
	create.Cookie = authCookieFor(t, authHandler, admin.ID)
	create.Body = TripFields{
		Name:           "Aconcagua Base Camp",
		Slug:           "aconcagua-base",
		Region:         "Mendoza",
		Difficulty:     "hard",
		DurationDays:   7,
		BasePriceCents: 450_000,
		Active:         true,
	}
	created, err := handler.HandleCreateTrip(context.Background(), create)
	if err != nil {
		t.Fatalf("HandleCreateTrip returned error: %v", err)
	}

	// Duplicate slug is rejected.
	if _, err := handler.HandleCreateTrip(context.Background(), create); err == nil {
		t.Error("expected error for duplicate slug")
	}

	// Inactive trips are hidden from the public catalog.
	hidden := &CreateTripRequest{}
	hidden.Cookie = create.Cookie
	hidden.Body = TripFields{Name: "Draft Trip", Slug: "draft", Active: false}
	if _, err := handler.HandleCreateTrip(context.Background(), hidden); err != nil {
		t.Fatalf("HandleCreateTrip (draft) returned error: %v", err)
	}
	var draft models.Trip
	db.Where("slug = ?", "draft").First(&draft)
	if draft.Active {
		t.Error("expected draft trip stored inactive")
	}

	list, err := handler.HandleListTrips(context.Background(), &ListTripsRequest{})
	if err != nil {
		t.Fatalf("HandleListTrips returned error: %v", err)
	}
	if len(list.Body.Trips) != 1 {
		t.Fatalf("expected 1 public trip, got %d", len(list.Body.Trips))
	}
	if list.Body.Trips[0].Slug != "aconcagua-base" {
		t.Errorf("unexpected trip in catalog: %s", list.Body.Trips[0].Slug)
	}

	get, err := handler.HandleGetTrip(context.Background(), &GetTripRequest{Slug: "aconcagua-base"})
	if err != nil {
		t.Fatalf("HandleGetTrip returned error: %v", err)
	}
	if get.Body.ID != created.Body.ID {
		t.Errorf("expected trip %d, got %d", created.Body.ID, get.Body.ID)
	}

	if _, err := handler.HandleGetTrip(context.Background(), &GetTripRequest{Slug: "draft"}); err == nil {
		t.Error("expected 404 for inactive trip")
	}

	// Non-admins cannot create trips.
	regular := models.User{Email: "user@example.com", Role: models.RoleUser}
	db.Create(&regular)
	create2 := &CreateTripRequest{}
	create2.Cookie = authCookieFor(t, authHandler, regular.ID)
	create2.Body = TripFields{Name: "Nope", Slug: "nope"}
	if _, err := handler.HandleCreateTrip(context.Background(), create2); err == nil {
		t.Error("expected error for non-admin create")
	}
}

func TestTripDateAdminRules(t *testing.T) {
	db := setupDB(t)
	user, date := seedBooking(t, db, 10)
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	manager := booking.NewManager(db)
	handler := NewTripDateHandler(db, manager, authHandler)
	adminCookie := authCookieFor(t, authHandler, admin.ID)

	if _, err := manager.CreateReservation(context.Background(), user.ID, date.ID, 6, false, ""); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	// Shrinking the pool below occupancy is rejected.
	update := &UpdateTripDateRequest{ID: date.ID}
	update.Cookie = adminCookie
	update.Body.StartDate = date.StartDate
	update.Body.EndDate = date.EndDate
	update.Body.TotalSeats = 4
	if _, err := handler.HandleUpdateTripDate(context.Background(), update); err == nil {
		t.Error("expected error shrinking seats below occupancy")
	}

	// Growing is fine.
	update.Body.TotalSeats = 12
	resp, err := handler.HandleUpdateTripDate(context.Background(), update)
	if err != nil {
		t.Fatalf("HandleUpdateTripDate returned error: %v", err)
	}
	if resp.Body.TotalSeats != 12 || resp.Body.RemainingSeats != 6 {
		t.Errorf("expected 12 total / 6 remaining, got %d / %d", resp.Body.TotalSeats, resp.Body.RemainingSeats)
	}

	// End date before start date is rejected.
	bad := &UpdateTripDateRequest{ID: date.ID}
	bad.Cookie = adminCookie
	bad.Body.StartDate = date.StartDate
	bad.Body.EndDate = date.StartDate.Add(-24 * time.Hour)
	bad.Body.TotalSeats = 12
	if _, err := handler.HandleUpdateTripDate(context.Background(), bad); err == nil {
		t.Error("expected error for end date before start date")
	}

	// Delete is blocked while seats are held.
	del := &DeleteTripDateRequest{ID: date.ID}
	del.Cookie = adminCookie
	if _, err := handler.HandleDeleteTripDate(context.Background(), del); err == nil {
		t.Error("expected error deleting trip date with occupancy")
	}
}

func TestTripDateCancelBlocksBooking(t *testing.T) {
	db := setupDB(t)
	user, date := seedBooking(t, db, 10)
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	manager := booking.NewManager(db)
	handler := NewTripDateHandler(db, manager, authHandler)

	update := &UpdateTripDateRequest{ID: date.ID}
	update.Cookie = authCookieFor(t, authHandler, admin.ID)
	update.Body.StartDate = date.StartDate
	update.Body.EndDate = date.EndDate
	update.Body.TotalSeats = date.TotalSeats
	update.Body.Cancelled = true
	resp, err := handler.HandleUpdateTripDate(context.Background(), update)
	if err != nil {
		t.Fatalf("HandleUpdateTripDate returned error: %v", err)
	}
	if resp.Body.Status != string(models.TripDateCancelled) {
		t.Errorf("expected cancelled, got %s", resp.Body.Status)
	}

	if _, err := manager.CreateReservation(context.Background(), user.ID, date.ID, 1, false, ""); err == nil {
		t.Error("expected error booking a cancelled trip date")
	}
}

func TestHandleAvailability(t *testing.T) {
	db := setupDB(t)
	user, date := seedBooking(t, db, 8)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	manager := booking.NewManager(db)
	handler := NewTripDateHandler(db, manager, authHandler)

	if _, err := manager.CreateReservation(context.Background(), user.ID, date.ID, 5, false, ""); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	resp, err := handler.HandleAvailability(context.Background(), &AvailabilityRequest{ID: date.ID})
	if err != nil {
		t.Fatalf("HandleAvailability returned error: %v", err)
	}
	if resp.Body.TotalSeats != 8 || resp.Body.OccupiedSeats != 5 || resp.Body.RemainingSeats != 3 {
		t.Errorf("unexpected availability: total=%d occupied=%d remaining=%d",
			resp.Body.TotalSeats, resp.Body.OccupiedSeats, resp.Body.RemainingSeats)
	}

	if _, err := handler.HandleAvailability(context.Background(), &AvailabilityRequest{ID: 9999}); err == nil {
		t.Error("expected error for unknown trip date")
	}
}
