package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus represents the state of a passenger ticket
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "Pending" // booking still Temporary
	TicketStatusValid     TicketStatus = "Valid"
	TicketStatusCheckedIn TicketStatus = "CheckedIn"
	TicketStatusCancelled TicketStatus = "Cancelled"
)

// Ticket is one passenger's fare record within a booking
type Ticket struct {
	ID                   int64           `json:"ticketId" db:"id"`
	BookingID            int64           `json:"bookingId" db:"booking_id"`
	UserID               *int64          `json:"userId,omitempty" db:"user_id"`
	TripID               int64           `json:"tripId" db:"trip_id"`
	SeatID               *int64          `json:"seatId,omitempty" db:"seat_id"`
	TicketCode           string          `json:"ticketCode" db:"ticket_code"`
	PassengerName        string          `json:"passengerName" db:"passenger_name"`
	PassengerPhone       string          `json:"passengerPhone" db:"passenger_phone"`
	PassengerEmail       string          `json:"passengerEmail" db:"passenger_email"`
	PassengerIDCard      *string         `json:"passengerIdCard,omitempty" db:"passenger_id_card"`
	PassengerDateOfBirth *time.Time      `json:"passengerDateOfBirth,omitempty" db:"passenger_date_of_birth"`
	TotalPrice           decimal.Decimal `json:"totalPrice" db:"total_price"`
	Status               TicketStatus    `json:"status" db:"status"`
	PurchaseTime         time.Time       `json:"purchaseTime" db:"purchase_time"`
	CheckInTime          *time.Time      `json:"checkInTime,omitempty" db:"check_in_time"`
}

// TicketWithSeat joins a ticket with the seat and carriage it occupies
type TicketWithSeat struct {
	Ticket
	SeatNumber     *string `db:"seat_number"`
	SeatClass      *string `db:"seat_class"`
	SeatType       *string `db:"seat_type"`
	CarriageNumber *string `db:"carriage_number"`
}
