package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// SeatRepository reads seats joined with their carriage
type SeatRepository struct {
	db *sqlx.DB
}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

const seatSelect = `
	SELECT
		s.id, s.carriage_id, s.seat_number, s.seat_class, s.seat_type, s.is_active,
		c.train_id, c.carriage_number, c.carriage_type
	FROM seats s
	JOIN carriages c ON c.id = s.carriage_id
`

// GetByID loads a seat with its carriage, or nil when it does not exist
func (r *SeatRepository) GetByID(ctx context.Context, seatID int64) (*models.Seat, error) {
	var seat models.Seat
	err := r.db.GetContext(ctx, &seat, seatSelect+` WHERE s.id = $1`, seatID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return &seat, nil
}

// ListActiveByTrain returns every active seat of a train ordered by carriage and seat number
func (r *SeatRepository) ListActiveByTrain(ctx context.Context, trainID int64) ([]models.Seat, error) {
	query := seatSelect + `
		WHERE c.train_id = $1 AND s.is_active = TRUE AND c.is_active = TRUE
		ORDER BY c.carriage_number, s.seat_number
	`

	var seats []models.Seat
	if err := r.db.SelectContext(ctx, &seats, query, trainID); err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}
