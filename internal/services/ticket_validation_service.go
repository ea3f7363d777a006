package services

import (
	"context"
	"strings"
	"time"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/events"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/fastrail/booking-backend/internal/monitoring"
	"github.com/sirupsen/logrus"
)

// BoardingWindow bounds when a ticket may be checked in, relative to departure
type BoardingWindow struct {
	OpensBefore time.Duration
	ClosesAfter time.Duration
}

type bookingConfirmer interface {
	Confirm(ctx context.Context, bookingID int64) (bool, error)
}

// TicketValidationService checks passengers in at the gate
type TicketValidationService struct {
	ticketRepo  *database.TicketRepository
	bookingRepo *database.BookingRepository
	confirmer   bookingConfirmer
	publisher   events.Publisher
	window      BoardingWindow
	logger      *logrus.Logger
	now         func() time.Time
}

// NewTicketValidationService creates a new TicketValidationService
func NewTicketValidationService(
	ticketRepo *database.TicketRepository,
	bookingRepo *database.BookingRepository,
	confirmer bookingConfirmer,
	publisher events.Publisher,
	window BoardingWindow,
	logger *logrus.Logger,
) *TicketValidationService {
	return &TicketValidationService{
		ticketRepo:  ticketRepo,
		bookingRepo: bookingRepo,
		confirmer:   confirmer,
		publisher:   publisher,
		window:      window,
		logger:      logger,
		now:         time.Now,
	}
}

// ValidateAndCheckIn checks in the ticket with the given code on behalf of a
// staff member. A booking still on hold is confirmed first.
func (s *TicketValidationService) ValidateAndCheckIn(ctx context.Context, ticketCode, staff string) (*models.ValidateTicketResponse, error) {
	ticketCode = strings.TrimSpace(ticketCode)
	if ticketCode == "" {
		return nil, validationError("Ticket code is required")
	}

	ticket, err := s.ticketRepo.GetByCode(ctx, ticketCode)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, notFoundError(ErrTicketNotFound, "Ticket not found")
	}

	booking, err := s.bookingRepo.GetWithTrip(ctx, ticket.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notFoundError(ErrBookingNotFound, "Booking for this ticket not found")
	}

	now := s.now()
	opens := booking.DepartureTime.Add(-s.window.OpensBefore)
	closes := booking.DepartureTime.Add(s.window.ClosesAfter)
	if now.Before(opens) {
		return nil, validationError("Boarding for trip %s opens at %s", booking.TripCode, opens.Format(time.RFC3339))
	}
	if now.After(closes) {
		return nil, validationError("Boarding for trip %s closed at %s", booking.TripCode, closes.Format(time.RFC3339))
	}

	switch ticket.Status {
	case models.TicketStatusCheckedIn:
		return nil, conflictError("Ticket %s is already checked in", ticket.TicketCode)
	case models.TicketStatusCancelled:
		return nil, conflictError("Ticket %s has been cancelled", ticket.TicketCode)
	}

	switch booking.BookingStatus {
	case models.BookingStatusTemporary:
		confirmed, err := s.confirmer.Confirm(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, &BookingError{Kind: KindConflict, Message: "Booking hold has expired", Err: ErrHoldExpired}
		}
	case models.BookingStatusConfirmed:
	default:
		return nil, &BookingError{
			Kind:    KindConflict,
			Message: "Booking is " + string(booking.BookingStatus),
			Err:     ErrInvalidTransition,
		}
	}

	checkedIn, err := s.ticketRepo.CheckIn(ctx, ticket.ID, now)
	if err != nil {
		return nil, err
	}
	if !checkedIn {
		return nil, conflictError("Ticket %s cannot be checked in", ticket.TicketCode)
	}

	monitoring.TrackBookingOperation("check_in", monitoring.ResultSuccess)
	s.logger.WithFields(logrus.Fields{
		"ticket_code":  ticket.TicketCode,
		"booking_code": booking.BookingCode,
		"staff":        staff,
	}).Info("Ticket checked in")

	if s.publisher != nil {
		event := events.BookingEvent{
			Type:        events.TypeTicketCheckedIn,
			BookingID:   booking.ID,
			BookingCode: booking.BookingCode,
			TripID:      booking.TripID,
			Status:      string(models.TicketStatusCheckedIn),
			TicketCode:  ticket.TicketCode,
			OccurredAt:  now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).WithField("ticket_code", ticket.TicketCode).Warn("Failed to publish check-in event")
		}
	}

	return &models.ValidateTicketResponse{
		TicketCode:       ticket.TicketCode,
		BookingCode:      booking.BookingCode,
		PassengerName:    ticket.PassengerName,
		SeatNumber:       derefStr(ticket.SeatNumber),
		CarriageNumber:   derefStr(ticket.CarriageNumber),
		TripCode:         booking.TripCode,
		DepartureStation: booking.DepartureStationName,
		ArrivalStation:   booking.ArrivalStationName,
		DepartureTime:    booking.DepartureTime,
		Status:           string(models.TicketStatusCheckedIn),
		CheckInTime:      &now,
		CheckedInBy:      staff,
	}, nil
}
