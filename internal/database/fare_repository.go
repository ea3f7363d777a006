package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// FareRepository reads the fare table and records price calculations
type FareRepository struct {
	db *sqlx.DB
}

// NewFareRepository creates a new FareRepository
func NewFareRepository(db *sqlx.DB) *FareRepository {
	return &FareRepository{db: db}
}

// FindActive returns the fare in effect at the given instant for a segment,
// seat class and seat type. When several qualify the most recently effective
// one wins. Returns nil when no fare applies.
func (r *FareRepository) FindActive(ctx context.Context, segmentID int64, seatClass, seatType string, at time.Time) (*models.Fare, error) {
	query := `
		SELECT id, route_id, segment_id, seat_class, seat_type, base_price, currency,
		       effective_from, effective_to, is_active
		FROM fares
		WHERE segment_id = $1
		  AND seat_class = $2
		  AND seat_type = $3
		  AND is_active = TRUE
		  AND effective_from <= $4
		  AND (effective_to IS NULL OR effective_to >= $4)
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var fare models.Fare
	err := r.db.GetContext(ctx, &fare, query, segmentID, seatClass, seatType, at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active fare: %w", err)
	}
	return &fare, nil
}

// InsertPriceLog records how a segment price was derived. It runs inside the
// booking transaction so a rolled back hold leaves no log rows behind.
func (r *FareRepository) InsertPriceLog(ctx context.Context, tx *sqlx.Tx, entry *models.PriceCalculationLog) error {
	query := `
		INSERT INTO price_calculation_logs (
			trip_id, seat_id, segment_id, seat_class, seat_type,
			distance_km, method, fare_id, price, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.ExecContext(ctx, query,
		entry.TripID, entry.SeatID, entry.SegmentID, entry.SeatClass, entry.SeatType,
		entry.DistanceKm, entry.Method, entry.FareID, entry.Price, entry.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price calculation log: %w", err)
	}
	return nil
}
