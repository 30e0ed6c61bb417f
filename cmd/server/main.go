package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/booking"
	"github.com/trekkingar/trekkingar-api/internal/cache"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/database"
	"github.com/trekkingar/trekkingar-api/internal/handlers"
	"github.com/trekkingar/trekkingar-api/internal/notifier"
	"github.com/trekkingar/trekkingar-api/internal/queue"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Booking core
	manager := booking.NewManager(db)

	// Catalog cache (optional; nil Redis client disables it)
	redisClient := cache.NewRedisClient(cfg)
	if redisClient == nil {
		log.Printf("Redis not reachable, catalog cache disabled")
	}
	ttl, err := time.ParseDuration(cfg.CatalogCacheTTL)
	if err != nil {
		log.Printf("Invalid CATALOG_CACHE_TTL %q, using 60s", cfg.CatalogCacheTTL)
		ttl = 60 * time.Second
	}
	catalog := cache.NewCatalog(redisClient, ttl)

	// Notifiers (both optional)
	var notifiers []notifier.Notifier
	mailer := notifier.NewMailer(cfg)
	if cfg.SMTPHost != "" {
		notifiers = append(notifiers, mailer)
	} else {
		log.Printf("SMTP not configured, reservation emails disabled")
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordOpsChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			notifiers = append(notifiers, notifier.NewDiscordNotifier(session, cfg.DiscordOpsChannelID))
		}
	}

	// Campaign queue
	var publisher queue.Publisher
	if cfg.AMQPURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AMQPURL)
		go queue.StartCampaignConsumer(cfg.AMQPURL, db, mailer)
	} else {
		log.Printf("AMQP not configured, campaign sending disabled")
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	h := handlers.Handlers{
		Auth:        authHandler,
		Trip:        handlers.NewTripHandler(db, authHandler, catalog),
		TripDate:    handlers.NewTripDateHandler(db, manager, authHandler),
		Reservation: handlers.NewReservationHandler(db, manager, authHandler, cfg, notifiers...),
		Guide:       handlers.NewGuideHandler(db, authHandler),
		Newsletter:  handlers.NewNewsletterHandler(db, authHandler, publisher),
		Dashboard:   handlers.NewDashboardHandler(db, authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, h)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
