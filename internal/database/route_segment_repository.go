package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// RouteSegmentRepository reads the ordered segment chain of a route
type RouteSegmentRepository struct {
	db *sqlx.DB
}

// NewRouteSegmentRepository creates a new RouteSegmentRepository
func NewRouteSegmentRepository(db *sqlx.DB) *RouteSegmentRepository {
	return &RouteSegmentRepository{db: db}
}

const routeSegmentColumns = `id, route_id, from_station_id, to_station_id, segment_order, distance_km, is_active`

// ListActiveByRoute returns the active segments of a route ordered by segment_order
func (r *RouteSegmentRepository) ListActiveByRoute(ctx context.Context, routeID int64) ([]models.RouteSegment, error) {
	query := `
		SELECT ` + routeSegmentColumns + `
		FROM route_segments
		WHERE route_id = $1 AND is_active = TRUE
		ORDER BY segment_order ASC
	`

	var segments []models.RouteSegment
	if err := r.db.SelectContext(ctx, &segments, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to list route segments: %w", err)
	}
	return segments, nil
}

// GetByID returns a segment by id, or nil when it does not exist
func (r *RouteSegmentRepository) GetByID(ctx context.Context, segmentID int64) (*models.RouteSegment, error) {
	query := `SELECT ` + routeSegmentColumns + ` FROM route_segments WHERE id = $1`

	var segment models.RouteSegment
	err := r.db.GetContext(ctx, &segment, query, segmentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route segment: %w", err)
	}
	return &segment, nil
}
