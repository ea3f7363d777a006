package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// TripRepository reads trips together with their route and train
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID loads a trip with its route endpoints, or nil when it does not exist
func (r *TripRepository) GetByID(ctx context.Context, tripID int64) (*models.Trip, error) {
	query := `
		SELECT
			t.id, t.train_id, t.route_id, t.trip_code,
			t.departure_time, t.arrival_time, t.status, t.is_active,
			tr.train_number,
			r.departure_station_id, r.arrival_station_id,
			ds.name AS departure_station_name,
			ast.name AS arrival_station_name
		FROM trips t
		JOIN trains tr ON tr.id = t.train_id
		JOIN routes r ON r.id = t.route_id
		JOIN stations ds ON ds.id = r.departure_station_id
		JOIN stations ast ON ast.id = r.arrival_station_id
		WHERE t.id = $1
	`

	var trip models.Trip
	err := r.db.GetContext(ctx, &trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}
