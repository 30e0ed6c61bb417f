package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/booking"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/gorm"
)

type TripDateHandler struct {
	db          *gorm.DB
	manager     *booking.Manager
	authHandler *auth.AuthHandler
}

func NewTripDateHandler(db *gorm.DB, manager *booking.Manager, authHandler *auth.AuthHandler) *TripDateHandler {
	return &TripDateHandler{db: db, manager: manager, authHandler: authHandler}
}

type TripDateResponse struct {
	ID             uint      `json:"id"`
	TripID         uint      `json:"trip_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalSeats     int       `json:"total_seats"`
	RemainingSeats int       `json:"remaining_seats"`
	PriceCents     *int64    `json:"price_cents,omitempty"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
}

type ListTripDatesRequest struct {
	Slug string `path:"slug" doc:"Trip slug"`
}

type ListTripDatesOutput struct {
	Body struct {
		Dates []TripDateResponse `json:"dates"`
	}
}

func (h *TripDateHandler) HandleListTripDates(ctx context.Context, input *ListTripDatesRequest) (*ListTripDatesOutput, error) {
	var trip models.Trip
	if err := h.db.Where("slug = ? AND active = ?", input.Slug, true).First(&trip).Error; err != nil {
		return nil, huma.Error404NotFound("Trip not found")
	}

	var dates []models.TripDate
	if err := h.db.Where("trip_id = ?", trip.ID).Order("start_date asc").Find(&dates).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list trip dates")
	}

	res := &ListTripDatesOutput{}
	res.Body.Dates = make([]TripDateResponse, 0, len(dates))
	for _, d := range dates {
		remaining, err := h.manager.RemainingSeats(ctx, d.ID)
		if err != nil {
			return nil, mapBookingError(err)
		}
		res.Body.Dates = append(res.Body.Dates, TripDateResponse{
			ID:             d.ID,
			TripID:         d.TripID,
			StartDate:      d.StartDate,
			EndDate:        d.EndDate,
			TotalSeats:     d.TotalSeats,
			RemainingSeats: remaining,
			PriceCents:     d.PriceCents,
			Status:         string(d.Status),
			Notes:          d.Notes,
		})
	}
	return res, nil
}

type AvailabilityRequest struct {
	ID uint `path:"id" doc:"Trip date ID"`
}

type AvailabilityOutput struct {
	Body struct {
		TripDateID     uint   `json:"trip_date_id"`
		TotalSeats     int    `json:"total_seats"`
		OccupiedSeats  int    `json:"occupied_seats"`
		RemainingSeats int    `json:"remaining_seats"`
		Status         string `json:"status"`
	}
}

func (h *TripDateHandler) HandleAvailability(ctx context.Context, input *AvailabilityRequest) (*AvailabilityOutput, error) {
	var date models.TripDate
	if err := h.db.First(&date, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Trip date not found")
	}
	occupied, err := h.manager.OccupiedSeats(ctx, input.ID)
	if err != nil {
		return nil, mapBookingError(err)
	}
	remaining, err := h.manager.RemainingSeats(ctx, input.ID)
	if err != nil {
		return nil, mapBookingError(err)
	}

	res := &AvailabilityOutput{}
	res.Body.TripDateID = date.ID
	res.Body.TotalSeats = date.TotalSeats
	res.Body.OccupiedSeats = occupied
	res.Body.RemainingSeats = remaining
	res.Body.Status = string(date.Status)
	return res, nil
}

type CreateTripDateRequest struct {
	auth.AuthInput
	TripID uint `path:"id" doc:"Trip ID"`
	Body   struct {
		StartDate  time.Time `json:"start_date" required:"true"`
		EndDate    time.Time `json:"end_date" required:"true"`
		TotalSeats int       `json:"total_seats" minimum:"1" required:"true"`
		PriceCents *int64    `json:"price_cents,omitempty" doc:"Per-seat price override in cents"`
		Notes      string    `json:"notes"`
	}
}

type TripDateOutput struct {
	Body TripDateResponse
}

func (h *TripDateHandler) HandleCreateTripDate(ctx context.Context, input *CreateTripDateRequest) (*TripDateOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if input.Body.EndDate.Before(input.Body.StartDate) {
		return nil, huma.Error422UnprocessableEntity("End date cannot be before start date")
	}

	var trip models.Trip
	if err := h.db.First(&trip, input.TripID).Error; err != nil {
		return nil, huma.Error404NotFound("Trip not found")
	}

	date := models.TripDate{
		TripID:     trip.ID,
		StartDate:  input.Body.StartDate,
		EndDate:    input.Body.EndDate,
		TotalSeats: input.Body.TotalSeats,
		PriceCents: input.Body.PriceCents,
		Status:     models.TripDateAvailable,
		Notes:      input.Body.Notes,
	}
	if err := h.db.Create(&date).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create trip date")
	}

	return &TripDateOutput{Body: TripDateResponse{
		ID:             date.ID,
		TripID:         date.TripID,
		StartDate:      date.StartDate,
		EndDate:        date.EndDate,
		TotalSeats:     date.TotalSeats,
		RemainingSeats: date.TotalSeats,
		PriceCents:     date.PriceCents,
		Status:         string(date.Status),
		Notes:          date.Notes,
	}}, nil
}

type UpdateTripDateRequest struct {
	auth.AuthInput
	ID   uint `path:"id" doc:"Trip date ID"`
	Body struct {
		StartDate  time.Time `json:"start_date" required:"true"`
		EndDate    time.Time `json:"end_date" required:"true"`
		TotalSeats int       `json:"total_seats" minimum:"1" required:"true"`
		PriceCents *int64    `json:"price_cents,omitempty"`
		Cancelled  bool      `json:"cancelled" doc:"Cancel this departure; blocks new reservations"`
		Notes      string    `json:"notes"`
	}
}

func (h *TripDateHandler) HandleUpdateTripDate(ctx context.Context, input *UpdateTripDateRequest) (*TripDateOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if input.Body.EndDate.Before(input.Body.StartDate) {
		return nil, huma.Error422UnprocessableEntity("End date cannot be before start date")
	}

	var date models.TripDate
	if err := h.db.First(&date, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Trip date not found")
	}

	// Seat resizing goes through the manager so occupancy is re-checked
	// in the same transaction.
	if input.Body.TotalSeats != date.TotalSeats {
		if err := h.manager.UpdateTotalSeats(ctx, date.ID, input.Body.TotalSeats); err != nil {
			return nil, mapBookingError(err)
		}
	}

	updates := map[string]any{
		"start_date":  input.Body.StartDate,
		"end_date":    input.Body.EndDate,
		"price_cents": input.Body.PriceCents,
		"notes":       input.Body.Notes,
	}
	if input.Body.Cancelled {
		updates["status"] = models.TripDateCancelled
	} else if date.Status == models.TripDateCancelled {
		// Reopening recomputes available/full from current occupancy.
		occupied, err := h.manager.OccupiedSeats(ctx, date.ID)
		if err != nil {
			return nil, mapBookingError(err)
		}
		status := models.TripDateAvailable
		if occupied >= input.Body.TotalSeats {
			status = models.TripDateFull
		}
		updates["status"] = status
	}

	if err := h.db.Model(&date).Updates(updates).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update trip date")
	}
	if err := h.db.First(&date, input.ID).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to reload trip date")
	}

	remaining, err := h.manager.RemainingSeats(ctx, date.ID)
	if err != nil {
		return nil, mapBookingError(err)
	}

	return &TripDateOutput{Body: TripDateResponse{
		ID:             date.ID,
		TripID:         date.TripID,
		StartDate:      date.StartDate,
		EndDate:        date.EndDate,
		TotalSeats:     date.TotalSeats,
		RemainingSeats: remaining,
		PriceCents:     date.PriceCents,
		Status:         string(date.Status),
		Notes:          date.Notes,
	}}, nil
}

type DeleteTripDateRequest struct {
	auth.AuthInput
	ID uint `path:"id" doc:"Trip date ID"`
}

func (h *TripDateHandler) HandleDeleteTripDate(ctx context.Context, input *DeleteTripDateRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if err := h.manager.DeleteTripDate(ctx, input.ID); err != nil {
		return nil, mapBookingError(err)
	}
	return nil, nil
}
