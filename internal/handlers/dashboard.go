package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/trekkingar/trekkingar-api/internal/auth"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewDashboardHandler(db *gorm.DB, authHandler *auth.AuthHandler) *DashboardHandler {
	return &DashboardHandler{db: db, authHandler: authHandler}
}

type DashboardRequest struct {
	auth.AuthInput
}

type OccupancyRow struct {
	TripDateID     uint      `json:"trip_date_id"`
	TripName       string    `json:"trip_name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalSeats     int       `json:"total_seats"`
	OccupiedSeats  int       `json:"occupied_seats"`
	RemainingSeats int       `json:"remaining_seats"`
	Status         string    `json:"status"`
}

type DashboardOutput struct {
	Body struct {
		Trips                int64            `json:"trips"`
		UpcomingDepartures   int64            `json:"upcoming_departures"`
		Subscribers          int64            `json:"subscribers"`
		ReservationsByStatus map[string]int64 `json:"reservations_by_status"`
		Occupancy            []OccupancyRow   `json:"occupancy"`
	}
}

func (h *DashboardHandler) HandleDashboard(ctx context.Context, input *DashboardRequest) (*DashboardOutput, error) {
	if _, err := h.authHandler.RequireAdmin(ctx, input.Cookie); err != nil {
		return nil, err
	}

	res := &DashboardOutput{}
	now := time.Now()

	h.db.Model(&models.Trip{}).Where("active = ?", true).Count(&res.Body.Trips)
	h.db.Model(&models.TripDate{}).Where("start_date >= ?", now).Count(&res.Body.UpcomingDepartures)
	h.db.Model(&models.Subscriber{}).Where("active = ?", true).Count(&res.Body.Subscribers)

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := h.db.Model(&models.Reservation{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to aggregate reservations")
	}
	res.Body.ReservationsByStatus = make(map[string]int64, len(counts))
	for _, c := range counts {
		res.Body.ReservationsByStatus[c.Status] = c.Count
	}

	// Per-departure occupancy for upcoming dates, computed from the
	// reservation rows rather than a stored counter.
	var rows []OccupancyRow
	err := h.db.Table("trip_dates").
		Select(`trip_dates.id AS trip_date_id,
			trips.name AS trip_name,
			trip_dates.start_date,
			trip_dates.end_date,
			trip_dates.total_seats,
			trip_dates.status,
			COALESCE(SUM(CASE WHEN reservations.status IN ('pending','confirmed','in_progress','completed') THEN reservations.quantity ELSE 0 END), 0) AS occupied_seats`).
		Joins("JOIN trips ON trips.id = trip_dates.trip_id").
		Joins("LEFT JOIN reservations ON reservations.trip_date_id = trip_dates.id AND reservations.deleted_at IS NULL").
		Where("trip_dates.deleted_at IS NULL AND trip_dates.start_date >= ?", now).
		Group("trip_dates.id, trips.name, trip_dates.start_date, trip_dates.end_date, trip_dates.total_seats, trip_dates.status").
		Order("trip_dates.start_date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to aggregate occupancy")
	}
	for i := range rows {
		rows[i].RemainingSeats = max(rows[i].TotalSeats-rows[i].OccupiedSeats, 0)
	}
	res.Body.Occupancy = rows
	return res, nil
}
