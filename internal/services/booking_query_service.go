package services

import (
	"context"
	"strings"
	"time"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingQueryService serves the read side of bookings: detail projection,
// guest lookup by code and user history.
type BookingQueryService struct {
	bookingRepo *database.BookingRepository
	ticketRepo  *database.TicketRepository
	logger      *logrus.Logger
	now         func() time.Time
}

// NewBookingQueryService creates a new BookingQueryService
func NewBookingQueryService(bookingRepo *database.BookingRepository, ticketRepo *database.TicketRepository, logger *logrus.Logger) *BookingQueryService {
	return &BookingQueryService{
		bookingRepo: bookingRepo,
		ticketRepo:  ticketRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// GetDetails returns the detail projection of a booking
func (s *BookingQueryService) GetDetails(ctx context.Context, bookingID int64) (*models.BookingDetailsResponse, error) {
	booking, err := s.bookingRepo.GetWithTrip(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notFoundError(ErrBookingNotFound, "Booking not found")
	}
	return s.details(ctx, booking)
}

// LookupByCode finds a booking by its code, ignoring case
func (s *BookingQueryService) LookupByCode(ctx context.Context, code string) (*models.BookingDetailsResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationError("Booking code is required")
	}

	booking, err := s.bookingRepo.GetWithTripByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notFoundError(ErrBookingNotFound, "No booking found with this code")
	}
	return s.details(ctx, booking)
}

// UserBookings returns one page of a user's booking history
func (s *BookingQueryService) UserBookings(ctx context.Context, userID int64, query models.UserBookingsQuery) (*models.UserBookingsResponse, error) {
	if userID <= 0 {
		return nil, validationError("Invalid userId")
	}
	query.Normalize()
	if query.Status != "" && !isBookingStatus(query.Status) {
		return nil, validationError("Unknown booking status %q", query.Status)
	}

	total, err := s.bookingRepo.CountByUser(ctx, userID, query.Status)
	if err != nil {
		return nil, err
	}

	rows, err := s.bookingRepo.ListByUser(ctx, userID, query.Status, query.PageSize, (query.Page-1)*query.PageSize)
	if err != nil {
		return nil, err
	}

	resp := &models.UserBookingsResponse{
		Bookings: make([]models.BookingSummary, 0, len(rows)),
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}
	for _, b := range rows {
		resp.Bookings = append(resp.Bookings, models.BookingSummary{
			BookingID:        b.ID,
			BookingCode:      b.BookingCode,
			BookingStatus:    string(b.BookingStatus),
			TotalPrice:       b.TotalPrice.InexactFloat64(),
			TripCode:         b.TripCode,
			DepartureStation: b.DepartureStationName,
			ArrivalStation:   b.ArrivalStationName,
			DepartureTime:    b.DepartureTime,
			ExpirationTime:   b.ExpirationTime,
			TicketCount:      b.TicketCount,
			CreatedAt:        b.CreatedAt,
		})
	}
	return resp, nil
}

// UserStats aggregates a user's bookings per status
func (s *BookingQueryService) UserStats(ctx context.Context, userID int64) (*models.BookingStats, error) {
	if userID <= 0 {
		return nil, validationError("Invalid userId")
	}
	return s.bookingRepo.StatsByUser(ctx, userID)
}

func (s *BookingQueryService) details(ctx context.Context, booking *models.BookingWithTrip) (*models.BookingDetailsResponse, error) {
	tickets, err := s.ticketRepo.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return buildDetails(booking, tickets, s.now()), nil
}

// buildDetails projects a booking and its tickets. A Temporary booking past
// its expiration is shown as Expired even before the sweeper reaches it.
func buildDetails(booking *models.BookingWithTrip, tickets []models.TicketWithSeat, now time.Time) *models.BookingDetailsResponse {
	status := booking.BookingStatus
	live := false
	if status == models.BookingStatusTemporary {
		if booking.IsExpiredAt(now) {
			status = models.BookingStatusExpired
		} else {
			live = true
		}
	}

	resp := &models.BookingDetailsResponse{
		BookingID:        booking.ID,
		BookingCode:      booking.BookingCode,
		BookingStatus:    string(status),
		PaymentStatus:    string(booking.PaymentStatus),
		TotalPrice:       booking.TotalPrice.InexactFloat64(),
		IsGuestBooking:   booking.IsGuestBooking,
		CreatedAt:        booking.CreatedAt,
		ExpirationTime:   booking.ExpirationTime,
		ConfirmedAt:      booking.ConfirmedAt,
		CancelledAt:      booking.CancelledAt,
		TripID:           booking.TripID,
		TripCode:         booking.TripCode,
		TrainNumber:      booking.TrainNumber,
		DepartureStation: booking.DepartureStationName,
		ArrivalStation:   booking.ArrivalStationName,
		DepartureTime:    booking.DepartureTime,
		ArrivalTime:      booking.ArrivalTime,
		ContactName:      derefStr(booking.ContactName),
		ContactPhone:     derefStr(booking.ContactPhone),
		ContactEmail:     derefStr(booking.ContactEmail),
		Tickets:          make([]models.TicketDetail, 0, len(tickets)),
		CanCancel:        live,
		CanExtend:        live,
	}

	if live && booking.ExpirationTime != nil {
		resp.TimeRemainingSeconds = int64(booking.ExpirationTime.Sub(now).Seconds())
	}

	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, models.TicketDetail{
			TicketID:       t.ID,
			TicketCode:     t.TicketCode,
			PassengerName:  t.PassengerName,
			PassengerPhone: t.PassengerPhone,
			PassengerEmail: t.PassengerEmail,
			SeatID:         t.SeatID,
			SeatNumber:     derefStr(t.SeatNumber),
			SeatClass:      derefStr(t.SeatClass),
			SeatType:       derefStr(t.SeatType),
			CarriageNumber: derefStr(t.CarriageNumber),
			TotalPrice:     t.TotalPrice.InexactFloat64(),
			Status:         string(t.Status),
			CheckInTime:    t.CheckInTime,
		})
	}

	return resp
}

func isBookingStatus(status string) bool {
	switch models.BookingStatus(status) {
	case models.BookingStatusTemporary, models.BookingStatusConfirmed,
		models.BookingStatusCancelled, models.BookingStatusExpired:
		return true
	}
	return false
}
