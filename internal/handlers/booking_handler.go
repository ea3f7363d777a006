package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/fastrail/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type bookingWorkflow interface {
	CreateTemporaryBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	Cancel(ctx context.Context, bookingID int64) (bool, error)
	Extend(ctx context.Context, bookingID int64) (bool, error)
}

type bookingQueries interface {
	GetDetails(ctx context.Context, bookingID int64) (*models.BookingDetailsResponse, error)
	LookupByCode(ctx context.Context, code string) (*models.BookingDetailsResponse, error)
	UserBookings(ctx context.Context, userID int64, query models.UserBookingsQuery) (*models.UserBookingsResponse, error)
	UserStats(ctx context.Context, userID int64) (*models.BookingStats, error)
}

type eTicketRenderer interface {
	GenerateETicket(ctx context.Context, bookingCode string) ([]byte, string, error)
}

// BookingHandler handles the temporary booking endpoints
type BookingHandler struct {
	workflow  bookingWorkflow
	queries   bookingQueries
	documents eTicketRenderer
	logger    *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(workflow bookingWorkflow, queries bookingQueries, documents eTicketRenderer, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		workflow:  workflow,
		queries:   queries,
		documents: documents,
		logger:    logger,
	}
}

// ============================================================================
// CREATE TEMPORARY BOOKING - POST /api/booking/create-temporary
// ============================================================================

// CreateTemporary places a timed hold on the requested seats. The
// CreateBookingResponse is returned in data on success and on rejection.
func (h *BookingHandler) CreateTemporary(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, false, "Invalid request body", &models.CreateBookingResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.workflow.CreateTemporaryBooking(c.Request.Context(), &req)
	if err != nil {
		message := internalErrorMessage
		var bookingErr *services.BookingError
		if errors.As(err, &bookingErr) {
			message = bookingErr.Message
		}

		status := http.StatusInternalServerError
		switch services.KindOf(err) {
		case services.KindValidation:
			status = http.StatusBadRequest
		case services.KindConflict:
			status = http.StatusConflict
		case services.KindNotFound:
			status = http.StatusNotFound
		}

		respond(c, status, false, message, &models.CreateBookingResponse{
			Success:        false,
			Message:        message,
			IsGuestBooking: req.IsGuest(),
		})
		return
	}

	respond(c, http.StatusCreated, true, resp.Message, resp)
}

// ============================================================================
// GUEST LOOKUP - POST /api/booking/guest-lookup
// ============================================================================

// GuestLookup finds a booking by its code
func (h *BookingHandler) GuestLookup(c *gin.Context) {
	var req models.GuestLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Booking code is required")
		return
	}

	details, err := h.queries.LookupByCode(c.Request.Context(), req.BookingCode)
	if err != nil {
		respondError(c, h.logger, err, "look up booking")
		return
	}

	respondOK(c, "Booking found", details)
}

// GetBooking returns the detail projection of one booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.queries.GetDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get booking")
		return
	}

	respondOK(c, "Booking retrieved", details)
}

// ============================================================================
// HOLD TRANSITIONS
// ============================================================================

// Cancel releases a Temporary booking's seats
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.workflow.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "cancel booking")
		return
	}
	if !cancelled {
		respond(c, http.StatusConflict, false, "Only temporary bookings can be cancelled", gin.H{"bookingId": id})
		return
	}

	respondOK(c, "Booking cancelled", gin.H{"bookingId": id})
}

// Extend restarts the hold window of a live Temporary booking
func (h *BookingHandler) Extend(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	extended, err := h.workflow.Extend(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "extend booking")
		return
	}
	if !extended {
		respond(c, http.StatusConflict, false, "Booking hold can no longer be extended", gin.H{"bookingId": id})
		return
	}

	details, err := h.queries.GetDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get booking")
		return
	}

	respondOK(c, "Booking hold extended", details)
}

// ============================================================================
// USER HISTORY - GET /api/booking/user/:userId
// ============================================================================

// UserBookings returns a page of a user's bookings
func (h *BookingHandler) UserBookings(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var query models.UserBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.queries.UserBookings(c.Request.Context(), userID, query)
	if err != nil {
		respondError(c, h.logger, err, "list user bookings")
		return
	}

	respondOK(c, "Bookings retrieved", page)
}

// UserStats returns per-status booking counts for a user
func (h *BookingHandler) UserStats(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	stats, err := h.queries.UserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "get user booking stats")
		return
	}

	respondOK(c, "Booking stats retrieved", stats)
}

// ============================================================================
// E-TICKET - GET /api/booking/code/:code/ticket.pdf
// ============================================================================

// ETicket renders the PDF e-ticket of a confirmed booking
func (h *BookingHandler) ETicket(c *gin.Context) {
	pdf, filename, err := h.documents.GenerateETicket(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err, "render e-ticket")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
