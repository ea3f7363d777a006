package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusTemporary BookingStatus = "Temporary" // seats held, waiting for payment
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusExpired   BookingStatus = "Expired"
)

// IsTerminal reports whether no further transition is allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled || s == BookingStatusExpired
}

// PaymentStatus represents the payment status of a booking
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// SeatSegmentStatus is the state of one (trip, seat, segment) reservation unit
type SeatSegmentStatus string

const (
	SeatSegmentAvailable         SeatSegmentStatus = "Available"
	SeatSegmentTemporaryReserved SeatSegmentStatus = "TemporaryReserved"
	SeatSegmentBooked            SeatSegmentStatus = "Booked"
)

// Booking codes start with GB for guests and BK for registered users
const (
	BookingCodePrefixGuest = "GB"
	BookingCodePrefixUser  = "BK"
)

// Booking is one purchase transaction covering one or more tickets
type Booking struct {
	ID              int64           `json:"bookingId" db:"id"`
	UserID          *int64          `json:"userId,omitempty" db:"user_id"`
	TripID          int64           `json:"tripId" db:"trip_id"`
	BookingCode     string          `json:"bookingCode" db:"booking_code"`
	BookingStatus   BookingStatus   `json:"bookingStatus" db:"booking_status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	ExpirationTime  *time.Time      `json:"expirationTime,omitempty" db:"expiration_time"`
	PassengerName   *string         `json:"passengerName,omitempty" db:"passenger_name"`
	PassengerPhone  *string         `json:"passengerPhone,omitempty" db:"passenger_phone"`
	PassengerEmail  *string         `json:"passengerEmail,omitempty" db:"passenger_email"`
	PassengerIDCard *string         `json:"passengerIdCard,omitempty" db:"passenger_id_card"`
	ContactName     *string         `json:"contactName,omitempty" db:"contact_name"`
	ContactPhone    *string         `json:"contactPhone,omitempty" db:"contact_phone"`
	ContactEmail    *string         `json:"contactEmail,omitempty" db:"contact_email"`
	IsGuestBooking  bool            `json:"isGuestBooking" db:"is_guest_booking"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	ConfirmedAt     *time.Time      `json:"confirmedAt,omitempty" db:"confirmed_at"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
}

// IsExpiredAt reports whether a Temporary hold has passed its expiration
func (b *Booking) IsExpiredAt(now time.Time) bool {
	return b.BookingStatus == BookingStatusTemporary &&
		b.ExpirationTime != nil && !now.Before(*b.ExpirationTime)
}

// SeatSegment is the reservation unit for one seat on one route segment of a trip.
// At most one row exists per (trip, seat, segment).
type SeatSegment struct {
	ID            int64             `json:"id" db:"id"`
	TripID        int64             `json:"tripId" db:"trip_id"`
	SeatID        int64             `json:"seatId" db:"seat_id"`
	SegmentID     int64             `json:"segmentId" db:"segment_id"`
	BookingID     *int64            `json:"bookingId,omitempty" db:"booking_id"`
	Status        SeatSegmentStatus `json:"status" db:"status"`
	ReservedAt    *time.Time        `json:"reservedAt,omitempty" db:"reserved_at"`
	BookedAt      *time.Time        `json:"bookedAt,omitempty" db:"booked_at"`
	HoldExpiresAt *time.Time        `json:"holdExpiresAt,omitempty" db:"hold_expires_at"`
}
