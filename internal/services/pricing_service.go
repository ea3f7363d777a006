package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type classRate struct {
	base  decimal.Decimal
	perKm decimal.Decimal
}

var (
	classRates = map[string]classRate{
		models.SeatClassEconomy:    {base: decimal.NewFromInt(30000), perKm: decimal.NewFromInt(800)},
		models.SeatClassBusiness:   {base: decimal.NewFromInt(60000), perKm: decimal.NewFromInt(1200)},
		models.SeatClassVIP:        {base: decimal.NewFromInt(120000), perKm: decimal.NewFromInt(2000)},
		models.SeatClassFirstClass: {base: decimal.NewFromInt(200000), perKm: decimal.NewFromInt(3000)},
	}

	seatTypeMultipliers = map[string]decimal.Decimal{
		models.SeatTypeWindow:  decimal.RequireFromString("1.10"),
		models.SeatTypeAisle:   decimal.RequireFromString("1.05"),
		models.SeatTypeMiddle:  decimal.RequireFromString("1.00"),
		models.SeatTypeTable:   decimal.RequireFromString("1.15"),
		models.SeatTypeSleeper: decimal.RequireFromString("1.50"),
	}

	priceRoundingUnit = decimal.NewFromInt(1000)
)

// FormulaPrice computes a segment price from the distance tables:
// ceil(((base + distance*perKm) * multiplier) / 1000) * 1000.
// Unknown classes price as Economy and unknown types use a multiplier of 1.
func FormulaPrice(seatClass, seatType string, distanceKm decimal.Decimal) decimal.Decimal {
	rate, ok := classRates[seatClass]
	if !ok {
		rate = classRates[models.SeatClassEconomy]
	}
	multiplier, ok := seatTypeMultipliers[seatType]
	if !ok {
		multiplier = decimal.NewFromInt(1)
	}

	raw := rate.base.Add(distanceKm.Mul(rate.perKm)).Mul(multiplier)
	return raw.Div(priceRoundingUnit).Ceil().Mul(priceRoundingUnit)
}

// PricingService resolves segment prices: an active fare row wins, otherwise
// the distance formula applies.
type PricingService struct {
	fareRepo     *database.FareRepository
	seatRepo     *database.SeatRepository
	segmentRepo  *database.RouteSegmentRepository
	logger       *logrus.Logger
	recordPrices bool
	now          func() time.Time
}

// NewPricingService creates a new PricingService. When recordPrices is set,
// PriceSegment hands back a log entry for every price used by a booking and
// RecordPrices writes them to price_calculation_logs.
func NewPricingService(
	fareRepo *database.FareRepository,
	seatRepo *database.SeatRepository,
	segmentRepo *database.RouteSegmentRepository,
	recordPrices bool,
	logger *logrus.Logger,
) *PricingService {
	return &PricingService{
		fareRepo:     fareRepo,
		seatRepo:     seatRepo,
		segmentRepo:  segmentRepo,
		logger:       logger,
		recordPrices: recordPrices,
		now:          time.Now,
	}
}

// SegmentPrice returns the price of one seat on one segment of a trip
func (s *PricingService) SegmentPrice(ctx context.Context, tripID, seatID, segmentID int64) (decimal.Decimal, error) {
	seat, err := s.seatRepo.GetByID(ctx, seatID)
	if err != nil {
		return decimal.Zero, err
	}
	if seat == nil {
		return decimal.Zero, ErrSeatNotFound
	}

	segment, err := s.segmentRepo.GetByID(ctx, segmentID)
	if err != nil {
		return decimal.Zero, err
	}
	if segment == nil {
		return decimal.Zero, ErrSegmentNotFound
	}

	return s.QuoteSegment(ctx, seat, *segment)
}

// TotalPrice sums SegmentPrice over segmentIDs
func (s *PricingService) TotalPrice(ctx context.Context, tripID, seatID int64, segmentIDs []int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, segmentID := range segmentIDs {
		price, err := s.SegmentPrice(ctx, tripID, seatID, segmentID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price)
	}
	return total, nil
}

// PriceSegment prices an already loaded seat and segment for a booking. When
// recording is enabled it also returns the log entry describing the price;
// nothing is written until RecordPrices runs in the booking transaction.
func (s *PricingService) PriceSegment(ctx context.Context, tripID int64, seat *models.Seat, segment models.RouteSegment) (decimal.Decimal, *models.PriceCalculationLog, error) {
	price, fare, err := s.quote(ctx, seat, segment)
	if err != nil {
		return decimal.Zero, nil, err
	}

	if !s.recordPrices {
		return price, nil, nil
	}
	return price, s.logEntry(tripID, seat, segment, price, fare), nil
}

// RecordPrices writes entries to price_calculation_logs within tx. A failed
// insert aborts the transaction, so the error is returned to fail the booking.
func (s *PricingService) RecordPrices(ctx context.Context, tx *sqlx.Tx, entries []*models.PriceCalculationLog) error {
	for _, entry := range entries {
		if err := s.fareRepo.InsertPriceLog(ctx, tx, entry); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"trip_id":    entry.TripID,
				"seat_id":    entry.SeatID,
				"segment_id": entry.SegmentID,
			}).Error("Failed to record price calculation")
			return err
		}
	}
	return nil
}

// QuoteSegment prices a seat and segment without recording it
func (s *PricingService) QuoteSegment(ctx context.Context, seat *models.Seat, segment models.RouteSegment) (decimal.Decimal, error) {
	price, _, err := s.quote(ctx, seat, segment)
	return price, err
}

func (s *PricingService) quote(ctx context.Context, seat *models.Seat, segment models.RouteSegment) (decimal.Decimal, *models.Fare, error) {
	fare, err := s.fareRepo.FindActive(ctx, segment.ID, seat.SeatClass, seat.SeatType, s.now())
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("failed to resolve fare: %w", err)
	}
	if fare != nil {
		return fare.BasePrice, fare, nil
	}
	return FormulaPrice(seat.SeatClass, seat.SeatType, segment.DistanceKm), nil, nil
}

func (s *PricingService) logEntry(tripID int64, seat *models.Seat, segment models.RouteSegment, price decimal.Decimal, fare *models.Fare) *models.PriceCalculationLog {
	entry := &models.PriceCalculationLog{
		TripID:       tripID,
		SeatID:       seat.ID,
		SegmentID:    segment.ID,
		SeatClass:    seat.SeatClass,
		SeatType:     seat.SeatType,
		DistanceKm:   segment.DistanceKm,
		Method:       models.PriceMethodFormula,
		Price:        price,
		CalculatedAt: s.now(),
	}
	if fare != nil {
		entry.Method = models.PriceMethodFareTable
		entry.FareID = &fare.ID
	}
	return entry
}
