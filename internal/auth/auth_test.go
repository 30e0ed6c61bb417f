package auth

import (
	"context"
	"testing"

	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	reg := &RegisterRequest{}
	reg.Body.Email = "ana@example.com"
	reg.Body.Password = "super-secret-pw"
	reg.Body.Name = "Ana"

	resp, err := handler.HandleRegister(context.Background(), reg)
	if err != nil {
		t.Fatalf("HandleRegister returned error: %v", err)
	}
	if resp.SetCookie == "" {
		t.Error("expected a session cookie after registration")
	}
	if resp.Body.Role != models.RoleUser {
		t.Errorf("expected role user, got %s", resp.Body.Role)
	}

	// Duplicate email is rejected.
	if _, err := handler.HandleRegister(context.Background(), reg); err == nil {
		t.Error("expected error for duplicate registration")
	}

	login := &LoginRequest{}
	login.Body.Email = "ana@example.com"
	login.Body.Password = "super-secret-pw"
	if _, err := handler.HandleLogin(context.Background(), login); err != nil {
		t.Fatalf("HandleLogin returned error: %v", err)
	}

	login.Body.Password = "wrong"
	if _, err := handler.HandleLogin(context.Background(), login); err == nil {
		t.Error("expected error for wrong password")
	}
}

func TestHandleMe(t *testing.T) {
	db := setupDB(t)
	user := models.User{
		Email: "test@example.com",
		Name:  "testuser",
		Role:  models.RoleUser,
	}
	db.Create(&user)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(user.ID)
		input := &MeRequest{}
		input.Cookie = "auth_token=" + token
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Name != user.Name {
			t.Errorf("expected name %s, got %s", user.Name, resp.Body.Name)
		}
		if resp.Body.Email != user.Email {
			t.Errorf("expected email %s, got %s", user.Email, resp.Body.Email)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &MeRequest{}
		_, err := handler.HandleMe(context.Background(), input)
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	db := setupDB(t)
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db)

	admin := models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	db.Create(&admin)
	regular := models.User{Email: "user@example.com", Role: models.RoleUser}
	db.Create(&regular)

	adminToken, _ := handler.GenerateToken(admin.ID)
	got, err := handler.RequireAdmin(context.Background(), "auth_token="+adminToken)
	if err != nil {
		t.Fatalf("RequireAdmin for admin returned error: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("expected admin user %d, got %d", admin.ID, got.ID)
	}

	userToken, _ := handler.GenerateToken(regular.ID)
	if _, err := handler.RequireAdmin(context.Background(), "auth_token="+userToken); err == nil {
		t.Error("expected error for non-admin user")
	}

	if _, err := handler.RequireAdmin(context.Background(), ""); err == nil {
		t.Error("expected error for missing cookie")
	}
}
