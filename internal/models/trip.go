package models

import "time"

// TripStatus values used by the catalog
const (
	TripStatusScheduled = "Scheduled"
	TripStatusCancelled = "Cancelled"
)

// Trip is a scheduled run of a train over a route, joined with the display
// fields the booking flow needs.
type Trip struct {
	ID                   int64     `json:"id" db:"id"`
	TrainID              int64     `json:"trainId" db:"train_id"`
	RouteID              int64     `json:"routeId" db:"route_id"`
	TripCode             string    `json:"tripCode" db:"trip_code"`
	DepartureTime        time.Time `json:"departureTime" db:"departure_time"`
	ArrivalTime          time.Time `json:"arrivalTime" db:"arrival_time"`
	Status               string    `json:"status" db:"status"`
	IsActive             bool      `json:"isActive" db:"is_active"`
	TrainNumber          string    `json:"trainNumber" db:"train_number"`
	DepartureStationID   int64     `json:"departureStationId" db:"departure_station_id"`
	ArrivalStationID     int64     `json:"arrivalStationId" db:"arrival_station_id"`
	DepartureStationName string    `json:"departureStation" db:"departure_station_name"`
	ArrivalStationName   string    `json:"arrivalStation" db:"arrival_station_name"`
}

// Bookable reports whether new holds may be placed on the trip
func (t *Trip) Bookable() bool {
	return t.IsActive && t.Status != TripStatusCancelled
}

// Seat classes that drive the pricing tables
const (
	SeatClassEconomy    = "Economy"
	SeatClassBusiness   = "Business"
	SeatClassVIP        = "VIP"
	SeatClassFirstClass = "FirstClass"
)

// Seat types that drive the pricing multiplier
const (
	SeatTypeWindow  = "Window"
	SeatTypeAisle   = "Aisle"
	SeatTypeMiddle  = "Middle"
	SeatTypeTable   = "Table"
	SeatTypeSleeper = "Sleeper"
)

// Seat belongs to exactly one carriage
type Seat struct {
	ID             int64  `json:"seatId" db:"id"`
	CarriageID     int64  `json:"carriageId" db:"carriage_id"`
	SeatNumber     string `json:"seatNumber" db:"seat_number"`
	SeatClass      string `json:"seatClass" db:"seat_class"`
	SeatType       string `json:"seatType" db:"seat_type"`
	IsActive       bool   `json:"isActive" db:"is_active"`
	TrainID        int64  `json:"trainId" db:"train_id"`
	CarriageNumber string `json:"carriageNumber" db:"carriage_number"`
	CarriageType   string `json:"carriageType" db:"carriage_type"`
}
