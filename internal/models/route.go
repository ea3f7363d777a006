package models

import "github.com/shopspring/decimal"

// Station is a stop on the rail network
type Station struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Code     *string `json:"code,omitempty" db:"code"`
	IsActive bool    `json:"isActive" db:"is_active"`
}

// RouteSegment is one directed hop between two adjacent stations of a route.
// Segments of a route form a contiguous chain ordered by SegmentOrder.
type RouteSegment struct {
	ID            int64           `json:"id" db:"id"`
	RouteID       int64           `json:"routeId" db:"route_id"`
	FromStationID int64           `json:"fromStationId" db:"from_station_id"`
	ToStationID   int64           `json:"toStationId" db:"to_station_id"`
	SegmentOrder  int             `json:"order" db:"segment_order"`
	DistanceKm    decimal.Decimal `json:"distanceKm" db:"distance_km"`
	IsActive      bool            `json:"isActive" db:"is_active"`
}

// SegmentIDs returns the ids of segs in order
func SegmentIDs(segs []RouteSegment) []int64 {
	ids := make([]int64, len(segs))
	for i, s := range segs {
		ids[i] = s.ID
	}
	return ids
}
