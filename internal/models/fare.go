package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fare is an explicit price for a segment, seat class and seat type that
// overrides the distance formula while it is in effect.
type Fare struct {
	ID            int64           `json:"id" db:"id"`
	RouteID       int64           `json:"routeId" db:"route_id"`
	SegmentID     int64           `json:"segmentId" db:"segment_id"`
	SeatClass     string          `json:"seatClass" db:"seat_class"`
	SeatType      string          `json:"seatType" db:"seat_type"`
	BasePrice     decimal.Decimal `json:"basePrice" db:"base_price"`
	Currency      string          `json:"currency" db:"currency"`
	EffectiveFrom time.Time       `json:"effectiveFrom" db:"effective_from"`
	EffectiveTo   *time.Time      `json:"effectiveTo,omitempty" db:"effective_to"`
	IsActive      bool            `json:"isActive" db:"is_active"`
}

// Price calculation methods recorded in the price log
const (
	PriceMethodFareTable = "fare_table"
	PriceMethodFormula   = "formula"
)

// PriceCalculationLog records how a segment price was derived
type PriceCalculationLog struct {
	ID           int64           `db:"id"`
	TripID       int64           `db:"trip_id"`
	SeatID       int64           `db:"seat_id"`
	SegmentID    int64           `db:"segment_id"`
	SeatClass    string          `db:"seat_class"`
	SeatType     string          `db:"seat_type"`
	DistanceKm   decimal.Decimal `db:"distance_km"`
	Method       string          `db:"method"`
	FareID       *int64          `db:"fare_id"`
	Price        decimal.Decimal `db:"price"`
	CalculatedAt time.Time       `db:"calculated_at"`
}
