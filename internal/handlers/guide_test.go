package handlers

import (
	"context"
	"testing"

	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
)

func TestGuideAdmin(t *testing.T) {
	db := setupDB(t)
	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	handler := NewGuideHandler(db, authHandler)
	adminCookie := authCookieFor(t, authHandler, admin.ID)

	create := &CreateGuideRequest{}
	create.Cookie = adminCookie
	create.Body = GuideFields{Name: "Sofia", Email: "sofia@example.com", Active: true}
	created, err := handler.HandleCreateGuide(context.Background(), create)
	if err != nil {
		t.Fatalf("HandleCreateGuide returned error: %v", err)
	}

	update := &UpdateGuideRequest{ID: created.Body.ID}
	update.Cookie = adminCookie
	update.Body = GuideFields{Name: "Sofia M", Email: "sofia@example.com", Active: true}
	updated, err := handler.HandleUpdateGuide(context.Background(), update)
	if err != nil {
		t.Fatalf("HandleUpdateGuide returned error: %v", err)
	}
	if updated.Body.Name != "Sofia M" {
		t.Errorf("expected updated name, got %q", updated.Body.Name)
	}

	list := &ListGuidesRequest{}
	list.Cookie = adminCookie
	guides, err := handler.HandleListGuides(context.Background(), list)
	if err != nil {
		t.Fatalf("HandleListGuides returned error: %v", err)
	}
	if len(guides.Body.Guides) != 1 {
		t.Fatalf("expected 1 guide, got %d", len(guides.Body.Guides))
	}

	// Deleting a guide unassigns their trips.
	trip := models.Trip{Name: "Fitz Roy Trek", Slug: "fitz-roy", Active: true, GuideID: &created.Body.ID}
	db.Create(&trip)

	del := &DeleteGuideRequest{ID: created.Body.ID}
	del.Cookie = adminCookie
	if _, err := handler.HandleDeleteGuide(context.Background(), del); err != nil {
		t.Fatalf("HandleDeleteGuide returned error: %v", err)
	}

	db.First(&trip, trip.ID)
	if trip.GuideID != nil {
		t.Error("expected trip unassigned after guide deletion")
	}

	guides, err = handler.HandleListGuides(context.Background(), list)
	if err != nil {
		t.Fatalf("HandleListGuides returned error: %v", err)
	}
	if len(guides.Body.Guides) != 0 {
		t.Errorf("expected 0 guides after delete, got %d", len(guides.Body.Guides))
	}
}
