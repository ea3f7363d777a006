package handlers

import (
	"context"
	"strconv"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type seatMapper interface {
	SeatMap(ctx context.Context, tripID, fromStationID, toStationID int64) (*models.SeatMapResponse, error)
}

// TripSeatHandler serves the seat availability map of a trip
type TripSeatHandler struct {
	seats  seatMapper
	logger *logrus.Logger
}

// NewTripSeatHandler creates a new TripSeatHandler
func NewTripSeatHandler(seats seatMapper, logger *logrus.Logger) *TripSeatHandler {
	return &TripSeatHandler{seats: seats, logger: logger}
}

// GetSeats handles GET /api/trips/:tripId/seats?from=&to=
func (h *TripSeatHandler) GetSeats(c *gin.Context) {
	tripID, ok := parseIDParam(c, "tripId")
	if !ok {
		return
	}

	from, errFrom := strconv.ParseInt(c.Query("from"), 10, 64)
	to, errTo := strconv.ParseInt(c.Query("to"), 10, 64)
	if errFrom != nil || errTo != nil {
		respondBadRequest(c, "Query parameters from and to must be station ids")
		return
	}

	seatMap, err := h.seats.SeatMap(c.Request.Context(), tripID, from, to)
	if err != nil {
		respondError(c, h.logger, err, "build seat map")
		return
	}

	respondOK(c, "Seat availability retrieved", seatMap)
}
