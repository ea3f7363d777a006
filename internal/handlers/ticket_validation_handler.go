package handlers

import (
	"context"
	"net/http"

	"github.com/fastrail/booking-backend/internal/middleware"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ticketChecker interface {
	ValidateAndCheckIn(ctx context.Context, ticketCode, staff string) (*models.ValidateTicketResponse, error)
}

// TicketValidationHandler handles staff check-in of scanned tickets
type TicketValidationHandler struct {
	checker ticketChecker
	logger  *logrus.Logger
}

// NewTicketValidationHandler creates a new TicketValidationHandler
func NewTicketValidationHandler(checker ticketChecker, logger *logrus.Logger) *TicketValidationHandler {
	return &TicketValidationHandler{checker: checker, logger: logger}
}

// Validate handles POST /api/tickets/validate. Requires AuthMiddleware.
func (h *TicketValidationHandler) Validate(c *gin.Context) {
	staff, exists := middleware.GetStaffContext(c)
	if !exists {
		respond(c, http.StatusUnauthorized, false, "Staff not authenticated", nil)
		return
	}

	var req models.ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Ticket code is required")
		return
	}

	result, err := h.checker.ValidateAndCheckIn(c.Request.Context(), req.TicketCode, staff.StaffID)
	if err != nil {
		respondError(c, h.logger, err, "validate ticket")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"ticket_code": result.TicketCode,
		"staff_id":    staff.StaffID,
	}).Info("Ticket checked in")

	respondOK(c, "Ticket validated, passenger checked in", result)
}
