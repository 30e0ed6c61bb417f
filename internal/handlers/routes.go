package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/config"
)

type Handlers struct {
	Auth        *auth.AuthHandler
	Trip        *TripHandler
	TripDate    *TripDateHandler
	Reservation *ReservationHandler
	Guide       *GuideHandler
	Newsletter  *NewsletterHandler
	Dashboard   *DashboardHandler
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if cfg.EnableCORS {
		r.Use(corsMiddleware(cfg.FrontendURL))
	}

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("TrekkingAR API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, humaConfig)

	withAuth := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/google/login", h.Auth.HandleGoogleLogin)
	r.Get("/auth/google/callback", h.Auth.HandleGoogleCallback)
	huma.Post(api, "/auth/register", h.Auth.HandleRegister)
	huma.Post(api, "/auth/login", h.Auth.HandleLogin)
	huma.Get(api, "/me", h.Auth.HandleMe, withAuth)

	// Catalog
	huma.Get(api, "/trips", h.Trip.HandleListTrips)
	huma.Get(api, "/trips/{slug}", h.Trip.HandleGetTrip)
	huma.Get(api, "/trips/{slug}/dates", h.TripDate.HandleListTripDates)
	huma.Get(api, "/dates/{id}/availability", h.TripDate.HandleAvailability)

	// Newsletter
	huma.Post(api, "/newsletter/subscribe", h.Newsletter.HandleSubscribe)
	huma.Get(api, "/newsletter/unsubscribe", h.Newsletter.HandleUnsubscribe)

	// Reservations
	huma.Post(api, "/reservations", h.Reservation.HandleCreateReservation, withAuth)
	huma.Get(api, "/reservations", h.Reservation.HandleListMyReservations, withAuth)
	huma.Post(api, "/reservations/{id}/cancel", h.Reservation.HandleCancelReservation, withAuth)

	// Payment collaborator
	huma.Post(api, "/payments/webhook", h.Reservation.HandlePaymentWebhook)

	// Admin back office
	huma.Post(api, "/admin/trips", h.Trip.HandleCreateTrip, withAuth)
	huma.Put(api, "/admin/trips/{id}", h.Trip.HandleUpdateTrip, withAuth)
	huma.Delete(api, "/admin/trips/{id}", h.Trip.HandleDeleteTrip, withAuth)
	huma.Post(api, "/admin/trips/{id}/dates", h.TripDate.HandleCreateTripDate, withAuth)
	huma.Put(api, "/admin/dates/{id}", h.TripDate.HandleUpdateTripDate, withAuth)
	huma.Delete(api, "/admin/dates/{id}", h.TripDate.HandleDeleteTripDate, withAuth)
	huma.Get(api, "/admin/reservations", h.Reservation.HandleAdminListReservations, withAuth)
	huma.Put(api, "/admin/reservations/{id}/status", h.Reservation.HandleAdminChangeStatus, withAuth)
	huma.Get(api, "/admin/guides", h.Guide.HandleListGuides, withAuth)
	huma.Post(api, "/admin/guides", h.Guide.HandleCreateGuide, withAuth)
	huma.Put(api, "/admin/guides/{id}", h.Guide.HandleUpdateGuide, withAuth)
	huma.Delete(api, "/admin/guides/{id}", h.Guide.HandleDeleteGuide, withAuth)
	huma.Get(api, "/admin/campaigns", h.Newsletter.HandleListCampaigns, withAuth)
	huma.Post(api, "/admin/campaigns", h.Newsletter.HandleCreateCampaign, withAuth)
	huma.Post(api, "/admin/campaigns/{id}/send", h.Newsletter.HandleSendCampaign, withAuth)
	huma.Get(api, "/admin/dashboard", h.Dashboard.HandleDashboard, withAuth)
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Webhook-Secret")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
