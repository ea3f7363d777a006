package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.user_id, b.trip_id, b.booking_code, b.booking_status, b.payment_status,
	b.total_price, b.expiration_time, b.passenger_name, b.passenger_phone,
	b.passenger_email, b.passenger_id_card, b.contact_name, b.contact_phone,
	b.contact_email, b.is_guest_booking, b.created_at, b.confirmed_at, b.cancelled_at
`

const bookingWithTripSelect = `
	SELECT ` + bookingColumns + `,
		t.trip_code, t.departure_time, t.arrival_time,
		tr.train_number,
		ds.name AS departure_station_name,
		ast.name AS arrival_station_name,
		(SELECT COUNT(*) FROM tickets tk WHERE tk.booking_id = b.id) AS ticket_count
	FROM bookings b
	JOIN trips t ON t.id = b.trip_id
	JOIN trains tr ON tr.id = t.train_id
	JOIN routes r ON r.id = t.route_id
	JOIN stations ds ON ds.id = r.departure_station_id
	JOIN stations ast ON ast.id = r.arrival_station_id
`

// ============================================================================
// CREATE
// ============================================================================

// Create inserts a booking inside tx and fills in its generated id
func (r *BookingRepository) Create(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			user_id, trip_id, booking_code, booking_status, payment_status,
			total_price, expiration_time, passenger_name, passenger_phone,
			passenger_email, passenger_id_card, contact_name, contact_phone,
			contact_email, is_guest_booking, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id
	`

	err := tx.QueryRowxContext(ctx, query,
		booking.UserID, booking.TripID, booking.BookingCode, booking.BookingStatus, booking.PaymentStatus,
		booking.TotalPrice, booking.ExpirationTime, booking.PassengerName, booking.PassengerPhone,
		booking.PassengerEmail, booking.PassengerIDCard, booking.ContactName, booking.ContactPhone,
		booking.ContactEmail, booking.IsGuestBooking, booking.CreatedAt,
	).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// UpdateTotalPrice sets the booking total once every ticket is priced
func (r *BookingRepository) UpdateTotalPrice(ctx context.Context, tx *sqlx.Tx, bookingID int64, total decimal.Decimal) error {
	query := `UPDATE bookings SET total_price = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, bookingID, total); err != nil {
		return fmt.Errorf("failed to update booking total: %w", err)
	}
	return nil
}

// ============================================================================
// READS
// ============================================================================

// GetByID retrieves a booking by id, or nil when it does not exist
func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	return r.getBooking(ctx, r.db, query, bookingID)
}

// GetByIDForUpdate locks the booking row for the rest of tx
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1 FOR UPDATE`
	return r.getBooking(ctx, tx, query, bookingID)
}

// GetWithTrip loads the booking detail projection by id
func (r *BookingRepository) GetWithTrip(ctx context.Context, bookingID int64) (*models.BookingWithTrip, error) {
	return r.getWithTrip(ctx, bookingWithTripSelect+` WHERE b.id = $1`, bookingID)
}

// GetWithTripByCode loads the booking detail projection by booking code,
// ignoring case.
func (r *BookingRepository) GetWithTripByCode(ctx context.Context, code string) (*models.BookingWithTrip, error) {
	return r.getWithTrip(ctx, bookingWithTripSelect+` WHERE UPPER(b.booking_code) = UPPER($1)`, code)
}

// ListByUser returns a page of a user's bookings, newest first. An empty
// status matches every status.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, status string, limit, offset int) ([]models.BookingWithTrip, error) {
	query := bookingWithTripSelect + `
		WHERE b.user_id = $1 AND ($2 = '' OR b.booking_status = $2)
		ORDER BY b.created_at DESC
		LIMIT $3 OFFSET $4
	`

	var bookings []models.BookingWithTrip
	if err := r.db.SelectContext(ctx, &bookings, query, userID, status, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return bookings, nil
}

// CountByUser counts a user's bookings with the same filter as ListByUser
func (r *BookingRepository) CountByUser(ctx context.Context, userID int64, status string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings b WHERE b.user_id = $1 AND ($2 = '' OR b.booking_status = $2)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, status); err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return count, nil
}

// StatsByUser aggregates a user's bookings per status
func (r *BookingRepository) StatsByUser(ctx context.Context, userID int64) (*models.BookingStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'Temporary') AS temporary_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'Confirmed') AS confirmed_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'Cancelled') AS cancelled_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'Expired') AS expired_bookings,
			COALESCE(SUM(total_price) FILTER (WHERE booking_status = 'Confirmed'), 0) AS total_spent
		FROM bookings
		WHERE user_id = $1
	`

	var stats models.BookingStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user booking stats: %w", err)
	}
	return &stats, nil
}

// ListExpiredTemporaryIDs returns Temporary bookings whose hold has passed,
// oldest expiry first.
func (r *BookingRepository) ListExpiredTemporaryIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	query := `
		SELECT id
		FROM bookings
		WHERE booking_status = 'Temporary' AND expiration_time <= $1
		ORDER BY expiration_time ASC
		LIMIT $2
	`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	return ids, nil
}

// ============================================================================
// STATE TRANSITIONS
// Each transition only applies to a Temporary booking and reports whether a
// row changed, so a concurrent transition makes the loser a no-op.
// ============================================================================

// MarkConfirmed moves a Temporary booking to Confirmed and marks it paid
func (r *BookingRepository) MarkConfirmed(ctx context.Context, tx *sqlx.Tx, bookingID int64, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'Confirmed', payment_status = 'Paid', confirmed_at = $2
		WHERE id = $1 AND booking_status = 'Temporary'
	`
	rows, err := execAffected(ctx, tx, "confirm booking", query, bookingID, now)
	return rows > 0, err
}

// MarkCancelled moves a Temporary booking to Cancelled
func (r *BookingRepository) MarkCancelled(ctx context.Context, tx *sqlx.Tx, bookingID int64, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'Cancelled', cancelled_at = $2
		WHERE id = $1 AND booking_status = 'Temporary'
	`
	rows, err := execAffected(ctx, tx, "cancel booking", query, bookingID, now)
	return rows > 0, err
}

// MarkExpired moves a Temporary booking whose hold has passed to Expired
func (r *BookingRepository) MarkExpired(ctx context.Context, tx *sqlx.Tx, bookingID int64, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'Expired'
		WHERE id = $1 AND booking_status = 'Temporary' AND expiration_time <= $2
	`
	rows, err := execAffected(ctx, tx, "expire booking", query, bookingID, now)
	return rows > 0, err
}

// ExtendExpiration pushes the hold of a still-live Temporary booking
func (r *BookingRepository) ExtendExpiration(ctx context.Context, tx *sqlx.Tx, bookingID int64, expiresAt, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET expiration_time = $2
		WHERE id = $1 AND booking_status = 'Temporary' AND expiration_time > $3
	`
	rows, err := execAffected(ctx, tx, "extend booking", query, bookingID, expiresAt, now)
	return rows > 0, err
}

// ============================================================================
// HELPERS
// ============================================================================

func (r *BookingRepository) getBooking(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*models.Booking, error) {
	var booking models.Booking
	err := sqlx.GetContext(ctx, q, &booking, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *BookingRepository) getWithTrip(ctx context.Context, query string, args ...interface{}) (*models.BookingWithTrip, error) {
	var booking models.BookingWithTrip
	err := r.db.GetContext(ctx, &booking, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}
	return &booking, nil
}
