package database

import (
	"log"

	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Guide{},
		&models.Trip{},
		&models.TripDate{},
		&models.Reservation{},
		&models.ReservationHistory{},
		&models.Subscriber{},
		&models.Campaign{},
		&models.CampaignDelivery{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
