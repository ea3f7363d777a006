package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/shopspring/decimal"
)

// SeatAvailabilityService answers whether seats are free over a set of segments.
// A hold past its expiry counts as free even before the sweeper releases it.
type SeatAvailabilityService struct {
	seatSegmentRepo *database.SeatSegmentRepository
	seatRepo        *database.SeatRepository
	tripRepo        *database.TripRepository
	resolver        *RouteSegmentResolver
	pricing         *PricingService
	now             func() time.Time
}

// NewSeatAvailabilityService creates a new SeatAvailabilityService
func NewSeatAvailabilityService(
	seatSegmentRepo *database.SeatSegmentRepository,
	seatRepo *database.SeatRepository,
	tripRepo *database.TripRepository,
	resolver *RouteSegmentResolver,
	pricing *PricingService,
) *SeatAvailabilityService {
	return &SeatAvailabilityService{
		seatSegmentRepo: seatSegmentRepo,
		seatRepo:        seatRepo,
		tripRepo:        tripRepo,
		resolver:        resolver,
		pricing:         pricing,
		now:             time.Now,
	}
}

// IsAvailable reports whether seatID is free on every segment in segmentIDs
func (s *SeatAvailabilityService) IsAvailable(ctx context.Context, tripID, seatID int64, segmentIDs []int64) (bool, error) {
	if len(segmentIDs) == 0 {
		return true, nil
	}

	count, err := s.seatSegmentRepo.CountBlocking(ctx, tripID, seatID, segmentIDs, s.now())
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// SeatMap lists every active seat of the trip's train with its availability
// and price for the journey between the two stations.
func (s *SeatAvailabilityService) SeatMap(ctx context.Context, tripID, fromStationID, toStationID int64) (*models.SeatMapResponse, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, notFoundError(ErrTripNotFound, "Trip not found")
	}

	segments, err := s.resolver.ResolveSegments(ctx, trip.RouteID, fromStationID, toStationID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, validationError("Invalid route: the selected stations are not a valid journey on this trip")
	}
	segmentIDs := models.SegmentIDs(segments)

	seats, err := s.seatRepo.ListActiveByTrain(ctx, trip.TrainID)
	if err != nil {
		return nil, err
	}

	blocked, err := s.seatSegmentRepo.BlockedSeatIDs(ctx, tripID, segmentIDs, s.now())
	if err != nil {
		return nil, err
	}
	blockedSet := make(map[int64]struct{}, len(blocked))
	for _, id := range blocked {
		blockedSet[id] = struct{}{}
	}

	// price depends only on class and type, so quote each combination once
	prices := make(map[string]decimal.Decimal)

	resp := &models.SeatMapResponse{
		TripID:             tripID,
		DepartureStationID: fromStationID,
		ArrivalStationID:   toStationID,
		SegmentIDs:         segmentIDs,
		Seats:              make([]models.SeatAvailability, 0, len(seats)),
	}

	for i := range seats {
		seat := &seats[i]
		key := seat.SeatClass + "|" + seat.SeatType
		price, ok := prices[key]
		if !ok {
			price = decimal.Zero
			for _, segment := range segments {
				p, err := s.pricing.QuoteSegment(ctx, seat, segment)
				if err != nil {
					return nil, fmt.Errorf("failed to price seat %d: %w", seat.ID, err)
				}
				price = price.Add(p)
			}
			prices[key] = price
		}

		_, isBlocked := blockedSet[seat.ID]
		if !isBlocked {
			resp.AvailableCount++
		}

		resp.Seats = append(resp.Seats, models.SeatAvailability{
			SeatID:         seat.ID,
			SeatNumber:     seat.SeatNumber,
			CarriageID:     seat.CarriageID,
			CarriageNumber: seat.CarriageNumber,
			CarriageType:   seat.CarriageType,
			SeatClass:      seat.SeatClass,
			SeatType:       seat.SeatType,
			Price:          price.InexactFloat64(),
			IsAvailable:    !isBlocked,
		})
	}

	return resp, nil
}
