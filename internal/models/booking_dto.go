package models

import "time"

// ============================================================================
// CREATE TEMPORARY BOOKING
// ============================================================================

// TicketRequest is one passenger/seat pair in a booking request
type TicketRequest struct {
	SeatID               int64   `json:"seatId"`
	PassengerName        string  `json:"passengerName"`
	PassengerPhone       string  `json:"passengerPhone"`
	PassengerEmail       string  `json:"passengerEmail"`
	PassengerIDCard      *string `json:"passengerIdCard,omitempty"`
	PassengerDateOfBirth *string `json:"passengerDateOfBirth,omitempty"` // YYYY-MM-DD
}

// CreateBookingRequest places a temporary hold on one or more seats.
// A request without userId is a guest booking.
type CreateBookingRequest struct {
	UserID             *int64          `json:"userId,omitempty"`
	TripID             int64           `json:"tripId"`
	DepartureStationID int64           `json:"departureStationId"`
	ArrivalStationID   int64           `json:"arrivalStationId"`
	Tickets            []TicketRequest `json:"tickets"`
	ContactName        *string         `json:"contactName,omitempty"`
	ContactPhone       *string         `json:"contactPhone,omitempty"`
	ContactEmail       *string         `json:"contactEmail,omitempty"`
}

// IsGuest reports whether the request is made without a user account
func (r *CreateBookingRequest) IsGuest() bool {
	return r.UserID == nil
}

// CreateBookingResponse is returned for both successful and failed holds
type CreateBookingResponse struct {
	Success        bool       `json:"success"`
	BookingID      int64      `json:"bookingId,omitempty"`
	BookingCode    string     `json:"bookingCode,omitempty"`
	TotalPrice     float64    `json:"totalPrice"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
	Message        string     `json:"message"`
	IsGuestBooking bool       `json:"isGuestBooking"`
	LookupPhone    *string    `json:"lookupPhone,omitempty"`
	LookupEmail    *string    `json:"lookupEmail,omitempty"`
}

// ============================================================================
// LOOKUP / DETAIL PROJECTION
// ============================================================================

// GuestLookupRequest finds a booking by its code
type GuestLookupRequest struct {
	BookingCode string `json:"bookingCode" binding:"required"`
}

// BookingWithTrip is a booking joined with its trip display fields
type BookingWithTrip struct {
	Booking
	TripCode             string    `db:"trip_code"`
	TrainNumber          string    `db:"train_number"`
	DepartureStationName string    `db:"departure_station_name"`
	ArrivalStationName   string    `db:"arrival_station_name"`
	DepartureTime        time.Time `db:"departure_time"`
	ArrivalTime          time.Time `db:"arrival_time"`
	TicketCount          int       `db:"ticket_count"`
}

// TicketDetail is the presentation form of a ticket
type TicketDetail struct {
	TicketID       int64      `json:"ticketId"`
	TicketCode     string     `json:"ticketCode"`
	PassengerName  string     `json:"passengerName"`
	PassengerPhone string     `json:"passengerPhone"`
	PassengerEmail string     `json:"passengerEmail"`
	SeatID         *int64     `json:"seatId,omitempty"`
	SeatNumber     string     `json:"seatNumber,omitempty"`
	SeatClass      string     `json:"seatClass,omitempty"`
	SeatType       string     `json:"seatType,omitempty"`
	CarriageNumber string     `json:"carriageNumber,omitempty"`
	TotalPrice     float64    `json:"totalPrice"`
	Status         string     `json:"status"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty"`
}

// BookingDetailsResponse is the booking detail projection used by guest
// lookup, the booking detail endpoint and the e-ticket document.
type BookingDetailsResponse struct {
	BookingID            int64          `json:"bookingId"`
	BookingCode          string         `json:"bookingCode"`
	BookingStatus        string         `json:"bookingStatus"`
	PaymentStatus        string         `json:"paymentStatus"`
	TotalPrice           float64        `json:"totalPrice"`
	IsGuestBooking       bool           `json:"isGuestBooking"`
	CreatedAt            time.Time      `json:"createdAt"`
	ExpirationTime       *time.Time     `json:"expirationTime,omitempty"`
	ConfirmedAt          *time.Time     `json:"confirmedAt,omitempty"`
	CancelledAt          *time.Time     `json:"cancelledAt,omitempty"`
	TripID               int64          `json:"tripId"`
	TripCode             string         `json:"tripCode"`
	TrainNumber          string         `json:"trainNumber"`
	DepartureStation     string         `json:"departureStation"`
	ArrivalStation       string         `json:"arrivalStation"`
	DepartureTime        time.Time      `json:"departureTime"`
	ArrivalTime          time.Time      `json:"arrivalTime"`
	ContactName          string         `json:"contactName,omitempty"`
	ContactPhone         string         `json:"contactPhone,omitempty"`
	ContactEmail         string         `json:"contactEmail,omitempty"`
	Tickets              []TicketDetail `json:"tickets"`
	CanCancel            bool           `json:"canCancel"`
	CanExtend            bool           `json:"canExtend"`
	TimeRemainingSeconds int64          `json:"timeRemainingSeconds"`
}

// ============================================================================
// USER HISTORY
// ============================================================================

// UserBookingsQuery filters a user's booking history
type UserBookingsQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// Normalize clamps paging values to sane defaults
func (q *UserBookingsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// BookingSummary is one row of a user's booking history
type BookingSummary struct {
	BookingID        int64      `json:"bookingId"`
	BookingCode      string     `json:"bookingCode"`
	BookingStatus    string     `json:"bookingStatus"`
	TotalPrice       float64    `json:"totalPrice"`
	TripCode         string     `json:"tripCode"`
	DepartureStation string     `json:"departureStation"`
	ArrivalStation   string     `json:"arrivalStation"`
	DepartureTime    time.Time  `json:"departureTime"`
	ExpirationTime   *time.Time `json:"expirationTime,omitempty"`
	TicketCount      int        `json:"ticketCount"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// UserBookingsResponse is a page of a user's booking history
type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
}

// BookingStats aggregates a user's bookings per status
type BookingStats struct {
	TotalBookings     int     `json:"totalBookings" db:"total_bookings"`
	TemporaryBookings int     `json:"temporaryBookings" db:"temporary_bookings"`
	ConfirmedBookings int     `json:"confirmedBookings" db:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelledBookings" db:"cancelled_bookings"`
	ExpiredBookings   int     `json:"expiredBookings" db:"expired_bookings"`
	TotalSpent        float64 `json:"totalSpent" db:"total_spent"`
}

// ============================================================================
// SEAT MAP
// ============================================================================

// SeatAvailability describes one seat of a trip for a from/to pair
type SeatAvailability struct {
	SeatID         int64   `json:"seatId"`
	SeatNumber     string  `json:"seatNumber"`
	CarriageID     int64   `json:"carriageId"`
	CarriageNumber string  `json:"carriageNumber"`
	CarriageType   string  `json:"carriageType"`
	SeatClass      string  `json:"seatClass"`
	SeatType       string  `json:"seatType"`
	Price          float64 `json:"price"`
	IsAvailable    bool    `json:"isAvailable"`
}

// SeatMapResponse lists every active seat of a trip with availability and price
type SeatMapResponse struct {
	TripID             int64              `json:"tripId"`
	DepartureStationID int64              `json:"departureStationId"`
	ArrivalStationID   int64              `json:"arrivalStationId"`
	SegmentIDs         []int64            `json:"segmentIds"`
	AvailableCount     int                `json:"availableCount"`
	Seats              []SeatAvailability `json:"seats"`
}

// ============================================================================
// TICKET VALIDATION
// ============================================================================

// ValidateTicketRequest carries a ticket code read from a QR code
type ValidateTicketRequest struct {
	TicketCode string `json:"ticketCode" binding:"required"`
}

// ValidateTicketResponse is returned after a successful check-in
type ValidateTicketResponse struct {
	TicketCode       string     `json:"ticketCode"`
	BookingCode      string     `json:"bookingCode"`
	PassengerName    string     `json:"passengerName"`
	SeatNumber       string     `json:"seatNumber,omitempty"`
	CarriageNumber   string     `json:"carriageNumber,omitempty"`
	TripCode         string     `json:"tripCode"`
	DepartureStation string     `json:"departureStation"`
	ArrivalStation   string     `json:"arrivalStation"`
	DepartureTime    time.Time  `json:"departureTime"`
	Status           string     `json:"status"`
	CheckInTime      *time.Time `json:"checkInTime,omitempty"`
	CheckedInBy      string     `json:"checkedInBy"`
}
