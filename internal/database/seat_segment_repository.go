package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SeatSegmentRepository manages the (trip, seat, segment) reservation units.
// A TemporaryReserved row whose hold_expires_at has passed is treated as free
// everywhere, so stale holds never block a new booking.
type SeatSegmentRepository struct {
	db *sqlx.DB
}

// NewSeatSegmentRepository creates a new SeatSegmentRepository
func NewSeatSegmentRepository(db *sqlx.DB) *SeatSegmentRepository {
	return &SeatSegmentRepository{db: db}
}

// ============================================================================
// AVAILABILITY READS
// ============================================================================

// CountBlocking counts rows that make the seat unavailable on any of the
// given segments: Booked rows and holds that have not yet expired.
func (r *SeatSegmentRepository) CountBlocking(ctx context.Context, tripID, seatID int64, segmentIDs []int64, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM seat_segments
		WHERE trip_id = $1
		  AND seat_id = $2
		  AND segment_id = ANY($3)
		  AND (status = 'Booked' OR (status = 'TemporaryReserved' AND hold_expires_at > $4))
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, tripID, seatID, pq.Array(segmentIDs), now); err != nil {
		return 0, fmt.Errorf("failed to count blocking seat segments: %w", err)
	}
	return count, nil
}

// BlockedSeatIDs returns the seats of a trip that are unavailable on at least
// one of the given segments.
func (r *SeatSegmentRepository) BlockedSeatIDs(ctx context.Context, tripID int64, segmentIDs []int64, now time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT seat_id
		FROM seat_segments
		WHERE trip_id = $1
		  AND segment_id = ANY($2)
		  AND (status = 'Booked' OR (status = 'TemporaryReserved' AND hold_expires_at > $3))
	`

	var seatIDs []int64
	if err := r.db.SelectContext(ctx, &seatIDs, query, tripID, pq.Array(segmentIDs), now); err != nil {
		return nil, fmt.Errorf("failed to list blocked seats: %w", err)
	}
	return seatIDs, nil
}

// ============================================================================
// TRANSACTIONAL WRITES
// ============================================================================

// Reserve claims one (trip, seat, segment) unit for a booking. The insert
// only overwrites an existing row when that row is Available or a stale hold,
// so it reports false instead of claiming a unit someone else holds.
func (r *SeatSegmentRepository) Reserve(ctx context.Context, tx *sqlx.Tx, tripID, seatID, segmentID, bookingID int64, now, holdExpiresAt time.Time) (bool, error) {
	query := `
		INSERT INTO seat_segments (
			trip_id, seat_id, segment_id, booking_id, status, reserved_at, hold_expires_at
		) VALUES ($1, $2, $3, $4, 'TemporaryReserved', $5, $6)
		ON CONFLICT (trip_id, seat_id, segment_id) DO UPDATE
		SET booking_id = EXCLUDED.booking_id,
		    status = EXCLUDED.status,
		    reserved_at = EXCLUDED.reserved_at,
		    booked_at = NULL,
		    hold_expires_at = EXCLUDED.hold_expires_at
		WHERE seat_segments.status = 'Available'
		   OR (seat_segments.status = 'TemporaryReserved' AND seat_segments.hold_expires_at <= EXCLUDED.reserved_at)
		RETURNING id
	`

	var id int64
	err := tx.QueryRowxContext(ctx, query, tripID, seatID, segmentID, bookingID, now, holdExpiresAt).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to reserve seat segment: %w", err)
	}
	return true, nil
}

// MarkBooked turns every hold of a booking into a permanent reservation
func (r *SeatSegmentRepository) MarkBooked(ctx context.Context, tx *sqlx.Tx, bookingID int64, now time.Time) (int64, error) {
	query := `
		UPDATE seat_segments
		SET status = 'Booked', booked_at = $2, hold_expires_at = NULL
		WHERE booking_id = $1 AND status = 'TemporaryReserved'
	`
	return execAffected(ctx, tx, "mark seat segments booked", query, bookingID, now)
}

// Release returns every hold of a booking to Available
func (r *SeatSegmentRepository) Release(ctx context.Context, tx *sqlx.Tx, bookingID int64) (int64, error) {
	query := `
		UPDATE seat_segments
		SET status = 'Available', booking_id = NULL, reserved_at = NULL, hold_expires_at = NULL
		WHERE booking_id = $1 AND status = 'TemporaryReserved'
	`
	return execAffected(ctx, tx, "release seat segments", query, bookingID)
}

// ExtendHold moves the hold expiry of every unit a booking holds
func (r *SeatSegmentRepository) ExtendHold(ctx context.Context, tx *sqlx.Tx, bookingID int64, holdExpiresAt time.Time) (int64, error) {
	query := `
		UPDATE seat_segments
		SET hold_expires_at = $2
		WHERE booking_id = $1 AND status = 'TemporaryReserved'
	`
	return execAffected(ctx, tx, "extend seat segment holds", query, bookingID, holdExpiresAt)
}

// ReleaseStale frees every hold whose expiry has passed. The owning bookings
// are expired separately.
func (r *SeatSegmentRepository) ReleaseStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE seat_segments
		SET status = 'Available', booking_id = NULL, reserved_at = NULL, hold_expires_at = NULL
		WHERE status = 'TemporaryReserved' AND hold_expires_at <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale seat segments: %w", err)
	}
	return result.RowsAffected()
}

func execAffected(ctx context.Context, ex sqlx.ExecerContext, action, query string, args ...interface{}) (int64, error) {
	result, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", action, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", action, err)
	}
	return rows, nil
}
