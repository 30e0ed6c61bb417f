package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/cache"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/gorm"
)

const catalogCacheKey = "trips"

type TripHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	catalog     *cache.Catalog
}

func NewTripHandler(db *gorm.DB, authHandler *auth.AuthHandler, catalog *cache.Catalog) *TripHandler {
	return &TripHandler{db: db, authHandler: authHandler, catalog: catalog}
}

type TripResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Region         string `json:"region"`
	Difficulty     string `json:"difficulty"`
	DurationDays   int    `json:"duration_days"`
	BasePriceCents int64  `json:"base_price_cents"`
	Active         bool   `json:"active"`
	GuideID        *uint  `json:"guide_id,omitempty"`
	GuideName      string `json:"guide_name,omitempty"`
}

func tripResponse(t models.Trip) TripResponse {
	resp := TripResponse{
		ID:             t.ID,
		Name:           t.Name,
		Slug:           t.Slug,
		Description:    t.Description,
		Region:         t.Region,
		Difficulty:     t.Difficulty,
		DurationDays:   t.DurationDays,
		BasePriceCents: t.BasePriceCents,
		Active:         t.Active,
		GuideID:        t.GuideID,
	}
	if t.Guide != nil {
		resp.GuideName = t.Guide.Name
	}
	return resp
}

type ListTripsRequest struct{}

type ListTripsOutput struct {
	Body struct {
		Trips []TripResponse `json:"trips"`
	}
}

func (h *TripHandler) HandleListTrips(ctx context.Context, input *ListTripsRequest) (*ListTripsOutput, error) {
	res := &ListTripsOutput{}
	if h.catalog.Get(ctx, catalogCacheKey, &res.Body.Trips) {
		return res, nil
	}

	var trips []models.Trip
	if err := h.db.Preload("Guide").Where("active = ?", true).Order("name asc").Find(&trips).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list trips")
	}
	res.Body.Trips = make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		res.Body.Trips = append(res.Body.Trips, tripResponse(t))
	}
	h.catalog.Set(ctx, catalogCacheKey, res.Body.Trips)
	return res, nil
}

type GetTripRequest struct {
	Slug string `path:"slug" doc:"Trip slug"`
}

type GetTripOutput struct {
	Body TripResponse
}

func (h *TripHandler) HandleGetTrip(ctx context.Context, input *GetTripRequest) (*GetTripOutput, error) {
	var trip models.Trip
	if err := h.db.Preload("Guide").Where("slug = ? AND active = ?", input.Slug, true).First(&trip).Error; err != nil {
		return nil, huma.Error404NotFound("Trip not found")
	}
	return &GetTripOutput{Body: tripResponse(trip)}, nil
}

type TripFields struct {
	Name           string `json:"name" doc:"Trip name" required:"true"`
	Slug           string `json:"slug" doc:"URL slug, unique" required:"true"`
	Description    string `json:"description"`
	Region         string `json:"region"`
	Difficulty     string `json:"difficulty" doc:"easy, moderate or hard"`
	DurationDays   int    `json:"duration_days" minimum:"0"`
	BasePriceCents int64  `json:"base_price_cents" minimum:"0"`
	Active         bool   `json:"active"`
	GuideID        *uint  `json:"guide_id,omitempty"`
}

type CreateTripRequest struct {
	auth.AuthInput
	Body TripFields
}

func (h *TripHandler) HandleCreateTrip(ctx context.Context, input *CreateTripRequest) (*GetTripOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	if input.Body.GuideID != nil {
		if err := h.db.First(&models.Guide{}, *input.Body.GuideID).Error; err != nil {
			return nil, huma.Error404NotFound("Guide not found")
		}
	}

	trip := models.Trip{
		Name:           input.Body.Name,
		Slug:           input.Body.Slug,
		Description:    input.Body.Description,
		Region:         input.Body.Region,
		Difficulty:     input.Body.Difficulty,
		DurationDays:   input.Body.DurationDays,
		BasePriceCents: input.Body.BasePriceCents,
		Active:         input.Body.Active,
		GuideID:        input.Body.GuideID,
	}
	if err := h.db.Create(&trip).Error; err != nil {
		return nil, huma.Error409Conflict("Failed to create trip (duplicate slug?): " + err.Error())
	}

	h.catalog.Invalidate(ctx, catalogCacheKey)
	return &GetTripOutput{Body: tripResponse(trip)}, nil
}

type UpdateTripRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body TripFields
}

func (h *TripHandler) HandleUpdateTrip(ctx context.Context, input *UpdateTripRequest) (*GetTripOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var trip models.Trip
	if err := h.db.First(&trip, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Trip not found")
	}

	if input.Body.GuideID != nil {
		if err := h.db.First(&models.Guide{}, *input.Body.GuideID).Error; err != nil {
			return nil, huma.Error404NotFound("Guide not found")
		}
	}

	trip.Name = input.Body.Name
	trip.Slug = input.Body.Slug
	trip.Description = input.Body.Description
	trip.Region = input.Body.Region
	trip.Difficulty = input.Body.Difficulty
	trip.DurationDays = input.Body.DurationDays
	trip.BasePriceCents = input.Body.BasePriceCents
	trip.Active = input.Body.Active
	trip.GuideID = input.Body.GuideID

	if err := h.db.Save(&trip).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update trip: " + err.Error())
	}

	h.catalog.Invalidate(ctx, catalogCacheKey)
	return &GetTripOutput{Body: tripResponse(trip)}, nil
}

type DeleteTripRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *TripHandler) HandleDeleteTrip(ctx context.Context, input *DeleteTripRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var trip models.Trip
	if err := h.db.First(&trip, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Trip not found")
	}

	// A trip with seats still held on any departure cannot be removed.
	var held int64
	err := h.db.Model(&models.Reservation{}).
		Joins("JOIN trip_dates ON trip_dates.id = reservations.trip_date_id").
		Where("trip_dates.trip_id = ? AND reservations.status IN ?", trip.ID, models.OccupyingStatuses()).
		Count(&held).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to check reservations")
	}
	if held > 0 {
		return nil, huma.Error409Conflict("Trip has active reservations")
	}

	if err := h.db.Delete(&trip).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete trip")
	}

	h.catalog.Invalidate(ctx, catalogCacheKey)
	return nil, nil
}
