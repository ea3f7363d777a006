package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// TicketRepository handles database operations for the tickets table
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketWithSeatSelect = `
	SELECT
		tk.id, tk.booking_id, tk.user_id, tk.trip_id, tk.seat_id, tk.ticket_code,
		tk.passenger_name, tk.passenger_phone, tk.passenger_email, tk.passenger_id_card,
		tk.passenger_date_of_birth, tk.total_price, tk.status, tk.purchase_time, tk.check_in_time,
		s.seat_number, s.seat_class, s.seat_type, c.carriage_number
	FROM tickets tk
	LEFT JOIN seats s ON s.id = tk.seat_id
	LEFT JOIN carriages c ON c.id = s.carriage_id
`

// Create inserts a ticket inside tx and fills in its generated id
func (r *TicketRepository) Create(ctx context.Context, tx *sqlx.Tx, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (
			booking_id, user_id, trip_id, seat_id, ticket_code,
			passenger_name, passenger_phone, passenger_email, passenger_id_card,
			passenger_date_of_birth, total_price, status, purchase_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := tx.QueryRowxContext(ctx, query,
		ticket.BookingID, ticket.UserID, ticket.TripID, ticket.SeatID, ticket.TicketCode,
		ticket.PassengerName, ticket.PassengerPhone, ticket.PassengerEmail, ticket.PassengerIDCard,
		ticket.PassengerDateOfBirth, ticket.TotalPrice, ticket.Status, ticket.PurchaseTime,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// ListByBooking returns a booking's tickets with their seat and carriage
func (r *TicketRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.TicketWithSeat, error) {
	query := ticketWithSeatSelect + ` WHERE tk.booking_id = $1 ORDER BY tk.id`

	var tickets []models.TicketWithSeat
	if err := r.db.SelectContext(ctx, &tickets, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// GetByCode retrieves a ticket by code, or nil when it does not exist
func (r *TicketRepository) GetByCode(ctx context.Context, code string) (*models.TicketWithSeat, error) {
	query := ticketWithSeatSelect + ` WHERE UPPER(tk.ticket_code) = UPPER($1)`

	var ticket models.TicketWithSeat
	err := r.db.GetContext(ctx, &ticket, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// CountByBooking counts the tickets a booking owns
func (r *TicketRepository) CountByBooking(ctx context.Context, tx *sqlx.Tx, bookingID int64) (int, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM tickets WHERE booking_id = $1`, bookingID); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// MarkValid activates the pending tickets of a confirmed booking
func (r *TicketRepository) MarkValid(ctx context.Context, tx *sqlx.Tx, bookingID int64) (int64, error) {
	query := `UPDATE tickets SET status = 'Valid' WHERE booking_id = $1 AND status = 'Pending'`
	return execAffected(ctx, tx, "mark tickets valid", query, bookingID)
}

// CancelByBooking voids every ticket of a booking that has not been used
func (r *TicketRepository) CancelByBooking(ctx context.Context, tx *sqlx.Tx, bookingID int64) (int64, error) {
	query := `UPDATE tickets SET status = 'Cancelled' WHERE booking_id = $1 AND status IN ('Pending', 'Valid')`
	return execAffected(ctx, tx, "cancel tickets", query, bookingID)
}

// CheckIn marks a valid ticket as used. Returns false when the ticket was not Valid.
func (r *TicketRepository) CheckIn(ctx context.Context, ticketID int64, now time.Time) (bool, error) {
	query := `UPDATE tickets SET status = 'CheckedIn', check_in_time = $2 WHERE id = $1 AND status = 'Valid'`
	rows, err := execAffected(ctx, r.db, "check in ticket", query, ticketID, now)
	return rows > 0, err
}
