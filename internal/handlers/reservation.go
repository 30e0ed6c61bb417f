package handlers

import (
	"context"
	"crypto/subtle"
	"log"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/booking"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"github.com/trekkingar/trekkingar-api/internal/notifier"
	"gorm.io/gorm"
)

type ReservationHandler struct {
	db          *gorm.DB
	manager     *booking.Manager
	authHandler *auth.AuthHandler
	cfg         *config.Config
	notifiers   []notifier.Notifier
}

func NewReservationHandler(db *gorm.DB, manager *booking.Manager, authHandler *auth.AuthHandler, cfg *config.Config, notifiers ...notifier.Notifier) *ReservationHandler {
	return &ReservationHandler{db: db, manager: manager, authHandler: authHandler, cfg: cfg, notifiers: notifiers}
}

type ReservationResponse struct {
	ID              uint      `json:"id"`
	Reference       string    `json:"reference"`
	TripDateID      uint      `json:"trip_date_id"`
	TripName        string    `json:"trip_name,omitempty"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Quantity        int       `json:"quantity"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Observations    string    `json:"observations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func reservationResponse(r models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Reference:       r.Reference,
		TripDateID:      r.TripDateID,
		TripName:        r.TripDate.Trip.Name,
		StartDate:       r.TripDate.StartDate,
		EndDate:         r.TripDate.EndDate,
		Quantity:        r.Quantity,
		Status:          string(r.Status),
		TotalPriceCents: r.TotalPriceCents,
		Observations:    r.Observations,
		CreatedAt:       r.CreatedAt,
	}
}

// notify fans the update out to all configured notifiers. Failures are
// logged and never affect the reservation itself.
func (h *ReservationHandler) notify(reservationID uint) {
	var reservation models.Reservation
	if err := h.db.Preload("User").Preload("TripDate.Trip").First(&reservation, reservationID).Error; err != nil {
		log.Printf("Failed to load reservation %d for notification: %v", reservationID, err)
		return
	}
	for _, n := range h.notifiers {
		if n == nil {
			continue
		}
		if err := n.NotifyReservation(reservation.User, reservation, reservation.TripDate); err != nil {
			log.Printf("Failed to send reservation notification: %v", err)
		}
	}
}

type CreateReservationRequest struct {
	auth.AuthInput
	Body struct {
		TripDateID   uint   `json:"trip_date_id" required:"true" doc:"Departure to book"`
		Quantity     int    `json:"quantity" minimum:"1" required:"true" doc:"Number of people"`
		Observations string `json:"observations" doc:"Dietary needs, pickup point, etc."`
	}
}

type ReservationOutput struct {
	Body ReservationResponse
}

func (h *ReservationHandler) HandleCreateReservation(ctx context.Context, input *CreateReservationRequest) (*ReservationOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	reservation, err := h.manager.CreateReservation(ctx, userID, input.Body.TripDateID, input.Body.Quantity, false, input.Body.Observations)
	if err != nil {
		return nil, mapBookingError(err)
	}

	h.notify(reservation.ID)

	if err := h.db.Preload("TripDate.Trip").First(reservation, reservation.ID).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to reload reservation")
	}
	return &ReservationOutput{Body: reservationResponse(*reservation)}, nil
}

type ListMyReservationsRequest struct {
	auth.AuthInput
}

type ListReservationsOutput struct {
	Body struct {
		Reservations []ReservationResponse `json:"reservations"`
	}
}

func (h *ReservationHandler) HandleListMyReservations(ctx context.Context, input *ListMyReservationsRequest) (*ListReservationsOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var reservations []models.Reservation
	if err := h.db.Preload("TripDate.Trip").Where("user_id = ?", userID).Order("created_at desc").Find(&reservations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list reservations")
	}

	res := &ListReservationsOutput{}
	res.Body.Reservations = make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		res.Body.Reservations = append(res.Body.Reservations, reservationResponse(r))
	}
	return res, nil
}

type CancelReservationRequest struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Reservation ID"`
}

func (h *ReservationHandler) HandleCancelReservation(ctx context.Context, input *CancelReservationRequest) (*ReservationOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var reservation models.Reservation
	if err := h.db.First(&reservation, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Reservation not found")
	}
	if reservation.UserID != userID {
		return nil, huma.Error403Forbidden("Not your reservation")
	}

	updated, err := h.manager.ChangeStatus(ctx, reservation.ID, models.ReservationCancelled)
	if err != nil {
		return nil, mapBookingError(err)
	}

	h.notify(updated.ID)

	if err := h.db.Preload("TripDate.Trip").First(updated, updated.ID).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to reload reservation")
	}
	return &ReservationOutput{Body: reservationResponse(*updated)}, nil
}

type AdminChangeStatusRequest struct {
	auth.AuthInput
	ID   uint `path:"id" doc:"Reservation ID"`
	Body struct {
		Status string `json:"status" enum:"pending,confirmed,in_progress,completed,cancelled" required:"true"`
	}
}

func (h *ReservationHandler) HandleAdminChangeStatus(ctx context.Context, input *AdminChangeStatusRequest) (*ReservationOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	status, err := models.ParseReservationStatus(input.Body.Status)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	updated, err := h.manager.ChangeStatus(ctx, input.ID, status)
	if err != nil {
		return nil, mapBookingError(err)
	}

	h.notify(updated.ID)

	if err := h.db.Preload("TripDate.Trip").First(updated, updated.ID).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to reload reservation")
	}
	return &ReservationOutput{Body: reservationResponse(*updated)}, nil
}

type AdminListReservationsRequest struct {
	auth.AuthInput
	TripDateID uint   `query:"trip_date_id" doc:"Filter by trip date"`
	Status     string `query:"status" doc:"Filter by status"`
}

func (h *ReservationHandler) HandleAdminListReservations(ctx context.Context, input *AdminListReservationsRequest) (*ListReservationsOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	q := h.db.Preload("TripDate.Trip").Order("created_at desc")
	if input.TripDateID != 0 {
		q = q.Where("trip_date_id = ?", input.TripDateID)
	}
	if input.Status != "" {
		status, err := models.ParseReservationStatus(input.Status)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		q = q.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := q.Find(&reservations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list reservations")
	}

	res := &ListReservationsOutput{}
	res.Body.Reservations = make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		res.Body.Reservations = append(res.Body.Reservations, reservationResponse(r))
	}
	return res, nil
}

type PaymentWebhookRequest struct {
	Secret string `header:"X-Webhook-Secret" doc:"Shared webhook secret"`
	Body   struct {
		Reference string `json:"reference" required:"true" doc:"Reservation reference"`
		Event     string `json:"event" enum:"payment.captured,payment.failed" required:"true"`
	}
}

type PaymentWebhookOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// HandlePaymentWebhook is called by the payment collaborator and drives
// pending reservations to confirmed or cancelled. Retried webhooks are
// safe: a repeated capture lands on a no-op status change.
func (h *ReservationHandler) HandlePaymentWebhook(ctx context.Context, input *PaymentWebhookRequest) (*PaymentWebhookOutput, error) {
	if h.cfg.PaymentWebhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(input.Secret), []byte(h.cfg.PaymentWebhookSecret)) != 1 {
		return nil, huma.Error401Unauthorized("Invalid webhook secret")
	}

	var reservation models.Reservation
	if err := h.db.Where("reference = ?", input.Body.Reference).First(&reservation).Error; err != nil {
		return nil, huma.Error404NotFound("Reservation not found")
	}

	target := models.ReservationConfirmed
	if input.Body.Event == "payment.failed" {
		target = models.ReservationCancelled
	}

	updated, err := h.manager.ChangeStatus(ctx, reservation.ID, target)
	if err != nil {
		return nil, mapBookingError(err)
	}

	h.notify(updated.ID)

	res := &PaymentWebhookOutput{}
	res.Body.Status = string(updated.Status)
	return res, nil
}
