package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/events"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/fastrail/booking-backend/internal/monitoring"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BookingOrchestratorConfig holds configuration for the orchestrator
type BookingOrchestratorConfig struct {
	HoldTTL     time.Duration // how long a Temporary booking holds its seats
	CodeRetries int           // extra attempts when a booking code collides
}

// DefaultOrchestratorConfig returns default configuration
func DefaultOrchestratorConfig() BookingOrchestratorConfig {
	return BookingOrchestratorConfig{
		HoldTTL:     5 * time.Minute,
		CodeRetries: 1,
	}
}

type tripReader interface {
	GetByID(ctx context.Context, tripID int64) (*models.Trip, error)
}

type seatReader interface {
	GetByID(ctx context.Context, seatID int64) (*models.Seat, error)
}

type segmentResolver interface {
	ResolveSegments(ctx context.Context, routeID, fromStationID, toStationID int64) ([]models.RouteSegment, error)
}

type availabilityChecker interface {
	IsAvailable(ctx context.Context, tripID, seatID int64, segmentIDs []int64) (bool, error)
}

type segmentPricer interface {
	PriceSegment(ctx context.Context, tripID int64, seat *models.Seat, segment models.RouteSegment) (decimal.Decimal, *models.PriceCalculationLog, error)
	RecordPrices(ctx context.Context, tx *sqlx.Tx, entries []*models.PriceCalculationLog) error
}

var errBookingCodeTaken = errors.New("booking code already in use")

const systemErrorMessage = "System error while processing the booking. Please try again later."

// BookingOrchestratorService owns every write to bookings, tickets and seat
// segments: placing temporary holds and moving them through
// Temporary -> Confirmed | Cancelled | Expired.
type BookingOrchestratorService struct {
	db              *sqlx.DB
	trips           tripReader
	seats           seatReader
	resolver        segmentResolver
	availability    availabilityChecker
	pricer          segmentPricer
	bookingRepo     *database.BookingRepository
	ticketRepo      *database.TicketRepository
	seatSegmentRepo *database.SeatSegmentRepository
	publisher       events.Publisher
	config          BookingOrchestratorConfig
	logger          *logrus.Logger

	now     func() time.Time
	newCode func(isGuest bool, now time.Time) string
}

// NewBookingOrchestratorService creates a new orchestrator service
func NewBookingOrchestratorService(
	db *sqlx.DB,
	trips tripReader,
	seats seatReader,
	resolver segmentResolver,
	availability availabilityChecker,
	pricer segmentPricer,
	bookingRepo *database.BookingRepository,
	ticketRepo *database.TicketRepository,
	seatSegmentRepo *database.SeatSegmentRepository,
	publisher events.Publisher,
	config BookingOrchestratorConfig,
	logger *logrus.Logger,
) *BookingOrchestratorService {
	return &BookingOrchestratorService{
		db:              db,
		trips:           trips,
		seats:           seats,
		resolver:        resolver,
		availability:    availability,
		pricer:          pricer,
		bookingRepo:     bookingRepo,
		ticketRepo:      ticketRepo,
		seatSegmentRepo: seatSegmentRepo,
		publisher:       publisher,
		config:          config,
		logger:          logger,
		now:             time.Now,
		newCode:         GenerateBookingCode,
	}
}

// ============================================================================
// CREATE TEMPORARY BOOKING
// ============================================================================

type ticketPlan struct {
	req       models.TicketRequest
	seat      *models.Seat
	dob       *time.Time
	price     decimal.Decimal
	priceLogs []*models.PriceCalculationLog
}

// CreateTemporaryBooking validates the request, then in one transaction
// inserts the booking, claims every (seat, segment) unit and inserts one
// ticket per passenger. Any failure rolls back everything.
//
// Expected failures are returned as *BookingError. Unexpected failures are
// logged and returned as a KindSystem *BookingError with a generic message.
func (s *BookingOrchestratorService) CreateTemporaryBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	started := time.Now()

	resp, err := s.createTemporaryBooking(ctx, req)
	if err != nil {
		var bookingErr *BookingError
		if errors.As(err, &bookingErr) {
			monitoring.TrackBookingOperation("create", monitoring.ResultRejected)
			s.logger.WithFields(logrus.Fields{
				"trip_id": req.TripID,
				"kind":    bookingErr.Kind,
				"reason":  bookingErr.Message,
			}).Info("Temporary booking rejected")
			return nil, bookingErr
		}
		return nil, s.systemFailure("create", err, logrus.Fields{"trip_id": req.TripID})
	}

	monitoring.TrackBookingOperation("create", monitoring.ResultSuccess)
	monitoring.TrackHoldCreate(time.Since(started))
	return resp, nil
}

func (s *BookingOrchestratorService) createTemporaryBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	dobs, err := validateCreateRequest(req)
	if err != nil {
		return nil, err
	}

	if req.IsGuest() {
		applyGuestContactDefaults(req)
	}

	trip, err := s.trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, notFoundError(ErrTripNotFound, "Trip not found")
	}
	if !trip.Bookable() {
		return nil, validationError("Trip %s is not open for booking", trip.TripCode)
	}

	segments, err := s.resolver.ResolveSegments(ctx, trip.RouteID, req.DepartureStationID, req.ArrivalStationID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, validationError("Invalid route: the selected stations are not a valid journey on this trip")
	}
	segmentIDs := models.SegmentIDs(segments)

	plans := make([]ticketPlan, 0, len(req.Tickets))
	for i, t := range req.Tickets {
		seat, err := s.seats.GetByID(ctx, t.SeatID)
		if err != nil {
			return nil, err
		}
		if seat == nil || !seat.IsActive || seat.TrainID != trip.TrainID {
			return nil, validationError("Seat %d does not exist on this trip", t.SeatID)
		}

		available, err := s.availability.IsAvailable(ctx, trip.ID, seat.ID, segmentIDs)
		if err != nil {
			return nil, err
		}
		if !available {
			monitoring.TrackSeatConflict()
			return nil, conflictError("Seat %s (id %d) is already taken", seat.SeatNumber, seat.ID)
		}

		plan := ticketPlan{req: t, seat: seat, dob: dobs[i], price: decimal.Zero}
		for _, segment := range segments {
			p, entry, err := s.pricer.PriceSegment(ctx, trip.ID, seat, segment)
			if err != nil {
				return nil, err
			}
			plan.price = plan.price.Add(p)
			if entry != nil {
				plan.priceLogs = append(plan.priceLogs, entry)
			}
		}

		plans = append(plans, plan)
	}

	var booking *models.Booking
	for attempt := 0; ; attempt++ {
		booking, err = s.placeHold(ctx, req, trip, segments, plans)
		if errors.Is(err, errBookingCodeTaken) && attempt < s.config.CodeRetries {
			s.logger.WithField("attempt", attempt+1).Warn("Booking code collision, retrying with a new code")
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"booking_code": booking.BookingCode,
		"trip_id":      trip.ID,
		"seats":        len(plans),
		"segments":     len(segments),
		"total":        booking.TotalPrice.String(),
		"guest":        booking.IsGuestBooking,
	}).Info("Temporary booking created")

	s.publish(ctx, events.BookingEvent{
		Type:           events.TypeBookingHeld,
		BookingID:      booking.ID,
		BookingCode:    booking.BookingCode,
		TripID:         booking.TripID,
		Status:         string(booking.BookingStatus),
		TotalPrice:     booking.TotalPrice.InexactFloat64(),
		ExpirationTime: booking.ExpirationTime,
	})

	resp := &models.CreateBookingResponse{
		Success:        true,
		BookingID:      booking.ID,
		BookingCode:    booking.BookingCode,
		TotalPrice:     booking.TotalPrice.InexactFloat64(),
		ExpirationTime: booking.ExpirationTime,
		IsGuestBooking: booking.IsGuestBooking,
		Message:        s.successMessage(booking.IsGuestBooking),
	}
	if booking.IsGuestBooking {
		resp.LookupPhone = booking.ContactPhone
		resp.LookupEmail = booking.ContactEmail
	}
	return resp, nil
}

// placeHold runs the single write transaction of a booking attempt
func (s *BookingOrchestratorService) placeHold(
	ctx context.Context,
	req *models.CreateBookingRequest,
	trip *models.Trip,
	segments []models.RouteSegment,
	plans []ticketPlan,
) (*models.Booking, error) {
	now := s.now()
	expires := now.Add(s.config.HoldTTL)
	first := req.Tickets[0]

	booking := &models.Booking{
		UserID:          req.UserID,
		TripID:          trip.ID,
		BookingCode:     s.newCode(req.IsGuest(), now),
		BookingStatus:   models.BookingStatusTemporary,
		PaymentStatus:   models.PaymentStatusPending,
		TotalPrice:      decimal.Zero,
		ExpirationTime:  &expires,
		PassengerName:   strPtr(first.PassengerName),
		PassengerPhone:  strPtr(first.PassengerPhone),
		PassengerEmail:  strPtr(first.PassengerEmail),
		PassengerIDCard: first.PassengerIDCard,
		ContactName:     req.ContactName,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		IsGuestBooking:  req.IsGuest(),
		CreatedAt:       now,
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			if database.IsUniqueViolation(err) {
				return errBookingCodeTaken
			}
			return err
		}

		total := decimal.Zero
		var priceLogs []*models.PriceCalculationLog
		for _, plan := range plans {
			for _, segment := range segments {
				reserved, err := s.seatSegmentRepo.Reserve(ctx, tx, trip.ID, plan.seat.ID, segment.ID, booking.ID, now, expires)
				if err != nil {
					return err
				}
				if !reserved {
					monitoring.TrackSeatConflict()
					return conflictError("Seat %s (id %d) is already taken", plan.seat.SeatNumber, plan.seat.ID)
				}
			}

			seatID := plan.seat.ID
			ticket := &models.Ticket{
				BookingID:            booking.ID,
				UserID:               req.UserID,
				TripID:               trip.ID,
				SeatID:               &seatID,
				TicketCode:           fmt.Sprintf("%s-%d", booking.BookingCode, seatID),
				PassengerName:        strings.TrimSpace(plan.req.PassengerName),
				PassengerPhone:       strings.TrimSpace(plan.req.PassengerPhone),
				PassengerEmail:       strings.TrimSpace(plan.req.PassengerEmail),
				PassengerIDCard:      plan.req.PassengerIDCard,
				PassengerDateOfBirth: plan.dob,
				TotalPrice:           plan.price,
				Status:               models.TicketStatusPending,
				PurchaseTime:         now,
			}
			if err := s.ticketRepo.Create(ctx, tx, ticket); err != nil {
				return err
			}
			total = total.Add(plan.price)
			priceLogs = append(priceLogs, plan.priceLogs...)
		}

		if len(priceLogs) > 0 {
			if err := s.pricer.RecordPrices(ctx, tx, priceLogs); err != nil {
				return err
			}
		}

		booking.TotalPrice = total
		return s.bookingRepo.UpdateTotalPrice(ctx, tx, booking.ID, total)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func validateCreateRequest(req *models.CreateBookingRequest) ([]*time.Time, error) {
	if req.TripID <= 0 {
		return nil, validationError("Invalid tripId")
	}
	if !req.IsGuest() && *req.UserID <= 0 {
		return nil, validationError("Invalid userId for a user booking")
	}
	if len(req.Tickets) == 0 {
		return nil, validationError("Ticket list must not be empty")
	}

	dobs := make([]*time.Time, len(req.Tickets))
	seen := make(map[int64]bool, len(req.Tickets))
	for i, t := range req.Tickets {
		if strings.TrimSpace(t.PassengerName) == "" {
			return nil, validationError("Passenger name is required")
		}
		if strings.TrimSpace(t.PassengerPhone) == "" {
			return nil, validationError("Passenger phone is required")
		}
		if strings.TrimSpace(t.PassengerEmail) == "" {
			return nil, validationError("Passenger email is required")
		}
		if t.SeatID <= 0 {
			return nil, validationError("Invalid seatId")
		}
		if seen[t.SeatID] {
			return nil, validationError("Seat %d is requested more than once", t.SeatID)
		}
		seen[t.SeatID] = true

		if t.PassengerDateOfBirth != nil && strings.TrimSpace(*t.PassengerDateOfBirth) != "" {
			dob, ok := parseDateOfBirth(*t.PassengerDateOfBirth)
			if !ok {
				return nil, validationError("Invalid passenger date of birth %q", *t.PassengerDateOfBirth)
			}
			dobs[i] = &dob
		}
	}
	return dobs, nil
}

// dateOfBirthLayouts are tried in order; clients send either a full timestamp or a bare date
var dateOfBirthLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDateOfBirth(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateOfBirthLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// applyGuestContactDefaults fills blank guest contact fields from the first passenger
func applyGuestContactDefaults(req *models.CreateBookingRequest) {
	first := req.Tickets[0]
	if isBlank(req.ContactName) {
		req.ContactName = strPtr(first.PassengerName)
	}
	if isBlank(req.ContactPhone) {
		req.ContactPhone = strPtr(first.PassengerPhone)
	}
	if isBlank(req.ContactEmail) {
		req.ContactEmail = strPtr(first.PassengerEmail)
	}
}

func (s *BookingOrchestratorService) successMessage(isGuest bool) string {
	minutes := int(s.config.HoldTTL.Minutes())
	if isGuest {
		return fmt.Sprintf("Booking placed! Save your booking code to look it up, and complete payment within %d minutes.", minutes)
	}
	return fmt.Sprintf("Booking placed! Please complete payment within %d minutes.", minutes)
}

// ============================================================================
// CONFIRM / CANCEL / EXTEND / EXPIRE
// ============================================================================

// Confirm finalizes a Temporary booking: it becomes Confirmed and paid, its
// seat segments become Booked and its tickets Valid. Confirming an already
// Confirmed booking returns true without writing. A hold that has run out is
// expired instead and Confirm returns false.
func (s *BookingOrchestratorService) Confirm(ctx context.Context, bookingID int64) (bool, error) {
	var (
		booking   *models.Booking
		confirmed bool
		expired   bool
	)
	now := s.now()

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		booking, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		switch booking.BookingStatus {
		case models.BookingStatusConfirmed:
			confirmed = true
			return nil
		case models.BookingStatusTemporary:
		default:
			return nil
		}

		if booking.IsExpiredAt(now) {
			expired, err = s.expireLocked(ctx, tx, booking.ID, now)
			return err
		}

		if _, err := s.bookingRepo.MarkConfirmed(ctx, tx, booking.ID, now); err != nil {
			return err
		}
		if _, err := s.seatSegmentRepo.MarkBooked(ctx, tx, booking.ID, now); err != nil {
			return err
		}

		count, err := s.ticketRepo.CountByBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			if err := s.ticketRepo.Create(ctx, tx, fallbackTicket(booking, now)); err != nil {
				return err
			}
		} else if _, err := s.ticketRepo.MarkValid(ctx, tx, booking.ID); err != nil {
			return err
		}

		booking.BookingStatus = models.BookingStatusConfirmed
		confirmed = true
		return nil
	})
	if err != nil {
		return false, s.transitionFailure("confirm", bookingID, err)
	}

	if expired {
		s.afterExpire(ctx, booking)
		return false, nil
	}
	if !confirmed {
		monitoring.TrackBookingOperation("confirm", monitoring.ResultRejected)
		return false, nil
	}

	if booking.ConfirmedAt == nil {
		booking.ConfirmedAt = &now
		monitoring.TrackBookingOperation("confirm", monitoring.ResultSuccess)
		s.logger.WithFields(logrus.Fields{
			"booking_id":   booking.ID,
			"booking_code": booking.BookingCode,
		}).Info("Booking confirmed")
		s.publish(ctx, events.BookingEvent{
			Type:        events.TypeBookingConfirmed,
			BookingID:   booking.ID,
			BookingCode: booking.BookingCode,
			TripID:      booking.TripID,
			Status:      string(models.BookingStatusConfirmed),
			TotalPrice:  booking.TotalPrice.InexactFloat64(),
		})
	}
	return true, nil
}

// Cancel releases a Temporary booking: it becomes Cancelled, its seat
// segments return to Available and its tickets are voided. Bookings in any
// other state are left untouched and Cancel returns false.
func (s *BookingOrchestratorService) Cancel(ctx context.Context, bookingID int64) (bool, error) {
	var (
		booking   *models.Booking
		cancelled bool
	)
	now := s.now()

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		booking, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.BookingStatus != models.BookingStatusTemporary {
			return nil
		}

		cancelled, err = s.bookingRepo.MarkCancelled(ctx, tx, booking.ID, now)
		if err != nil || !cancelled {
			return err
		}
		if _, err := s.seatSegmentRepo.Release(ctx, tx, booking.ID); err != nil {
			return err
		}
		_, err = s.ticketRepo.CancelByBooking(ctx, tx, booking.ID)
		return err
	})
	if err != nil {
		return false, s.transitionFailure("cancel", bookingID, err)
	}

	if !cancelled {
		monitoring.TrackBookingOperation("cancel", monitoring.ResultRejected)
		return false, nil
	}

	monitoring.TrackBookingOperation("cancel", monitoring.ResultSuccess)
	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"booking_code": booking.BookingCode,
	}).Info("Booking cancelled")
	s.publish(ctx, events.BookingEvent{
		Type:        events.TypeBookingCancelled,
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		TripID:      booking.TripID,
		Status:      string(models.BookingStatusCancelled),
	})
	return true, nil
}

// Extend resets the hold of a live Temporary booking to now + HoldTTL. A hold
// that has already run out is expired instead, since its seats may have been
// claimed by another booking, and Extend returns false.
func (s *BookingOrchestratorService) Extend(ctx context.Context, bookingID int64) (bool, error) {
	var (
		booking  *models.Booking
		extended bool
		expired  bool
	)
	now := s.now()
	expires := now.Add(s.config.HoldTTL)

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		booking, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.BookingStatus != models.BookingStatusTemporary {
			return nil
		}

		if booking.IsExpiredAt(now) {
			expired, err = s.expireLocked(ctx, tx, booking.ID, now)
			return err
		}

		extended, err = s.bookingRepo.ExtendExpiration(ctx, tx, booking.ID, expires, now)
		if err != nil || !extended {
			return err
		}
		_, err = s.seatSegmentRepo.ExtendHold(ctx, tx, booking.ID, expires)
		return err
	})
	if err != nil {
		return false, s.transitionFailure("extend", bookingID, err)
	}

	if expired {
		s.afterExpire(ctx, booking)
		return false, nil
	}
	if !extended {
		monitoring.TrackBookingOperation("extend", monitoring.ResultRejected)
		return false, nil
	}

	monitoring.TrackBookingOperation("extend", monitoring.ResultSuccess)
	s.logger.WithFields(logrus.Fields{
		"booking_id":      booking.ID,
		"expiration_time": expires,
	}).Info("Booking hold extended")
	s.publish(ctx, events.BookingEvent{
		Type:           events.TypeBookingExtended,
		BookingID:      booking.ID,
		BookingCode:    booking.BookingCode,
		TripID:         booking.TripID,
		Status:         string(models.BookingStatusTemporary),
		ExpirationTime: &expires,
	})
	return true, nil
}

// Expire moves a Temporary booking whose hold has run out to Expired and
// releases its seats. Returns false when the booking is not expirable.
func (s *BookingOrchestratorService) Expire(ctx context.Context, bookingID int64) (bool, error) {
	var (
		booking *models.Booking
		expired bool
	)
	now := s.now()

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		booking, err = s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if !booking.IsExpiredAt(now) {
			return nil
		}
		expired, err = s.expireLocked(ctx, tx, booking.ID, now)
		return err
	})
	if err != nil {
		return false, s.transitionFailure("expire", bookingID, err)
	}

	if expired {
		s.afterExpire(ctx, booking)
	}
	return expired, nil
}

// ExpireStale expires up to limit overdue Temporary bookings, then frees any
// remaining stale holds. Returns the number of bookings expired.
func (s *BookingOrchestratorService) ExpireStale(ctx context.Context, limit int) (int, error) {
	now := s.now()

	ids, err := s.bookingRepo.ListExpiredTemporaryIDs(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		ok, err := s.Expire(ctx, id)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", id).Error("Failed to expire booking")
			continue
		}
		if ok {
			expired++
		}
	}

	released, err := s.seatSegmentRepo.ReleaseStale(ctx, now)
	if err != nil {
		return expired, err
	}
	if released > 0 {
		s.logger.WithField("count", released).Info("Released stale seat holds")
	}

	return expired, nil
}

// expireLocked performs the Expired transition on a booking locked by tx
func (s *BookingOrchestratorService) expireLocked(ctx context.Context, tx *sqlx.Tx, bookingID int64, now time.Time) (bool, error) {
	ok, err := s.bookingRepo.MarkExpired(ctx, tx, bookingID, now)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.seatSegmentRepo.Release(ctx, tx, bookingID); err != nil {
		return false, err
	}
	if _, err := s.ticketRepo.CancelByBooking(ctx, tx, bookingID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookingOrchestratorService) afterExpire(ctx context.Context, booking *models.Booking) {
	monitoring.TrackExpiredHolds(1)
	s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"booking_code": booking.BookingCode,
	}).Info("Booking hold expired")
	s.publish(ctx, events.BookingEvent{
		Type:        events.TypeBookingExpired,
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		TripID:      booking.TripID,
		Status:      string(models.BookingStatusExpired),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

// fallbackTicket builds a ticket from the booking's passenger details for a
// booking that reached confirmation without any ticket row.
func fallbackTicket(booking *models.Booking, now time.Time) *models.Ticket {
	return &models.Ticket{
		BookingID:       booking.ID,
		UserID:          booking.UserID,
		TripID:          booking.TripID,
		TicketCode:      booking.BookingCode + "-P1",
		PassengerName:   derefStr(booking.PassengerName),
		PassengerPhone:  derefStr(booking.PassengerPhone),
		PassengerEmail:  derefStr(booking.PassengerEmail),
		PassengerIDCard: booking.PassengerIDCard,
		TotalPrice:      booking.TotalPrice,
		Status:          models.TicketStatusValid,
		PurchaseTime:    now,
	}
}

func (s *BookingOrchestratorService) transitionFailure(operation string, bookingID int64, err error) error {
	if errors.Is(err, ErrBookingNotFound) {
		monitoring.TrackBookingOperation(operation, monitoring.ResultRejected)
		return err
	}
	return s.systemFailure(operation, err, logrus.Fields{"booking_id": bookingID})
}

// systemFailure logs an unexpected error and hides it behind a generic message
func (s *BookingOrchestratorService) systemFailure(operation string, err error, fields logrus.Fields) error {
	monitoring.TrackBookingOperation(operation, monitoring.ResultError)
	s.logger.WithError(err).WithFields(fields).WithField("operation", operation).Error("Booking operation failed")
	return &BookingError{Kind: KindSystem, Message: systemErrorMessage, Err: err}
}

func (s *BookingOrchestratorService) publish(ctx context.Context, event events.BookingEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"type":       event.Type,
			"booking_id": event.BookingID,
		}).Warn("Failed to publish booking event")
	}
}

func strPtr(v string) *string {
	v = strings.TrimSpace(v)
	return &v
}

func derefStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
