package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fastrail/booking-backend/internal/middleware"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/fastrail/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal server error. Please try again later."

func respond(c *gin.Context, status int, success bool, message string, data interface{}) {
	c.JSON(status, models.ApiResponse{
		Success:   success,
		Message:   message,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

func respondOK(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, true, message, data)
}

func respondBadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, false, message, nil)
}

// respondError maps a service failure to its HTTP status. Only BookingError
// messages reach the client; anything else is logged and hidden.
func respondError(c *gin.Context, logger *logrus.Logger, err error, action string) {
	var bookingErr *services.BookingError
	message := internalErrorMessage
	if errors.As(err, &bookingErr) {
		message = bookingErr.Message
	}

	switch services.KindOf(err) {
	case services.KindValidation:
		respond(c, http.StatusBadRequest, false, message, nil)
	case services.KindConflict:
		if bookingErr == nil {
			message = err.Error()
		}
		respond(c, http.StatusConflict, false, message, nil)
	case services.KindNotFound:
		if bookingErr == nil {
			message = "Resource not found"
		}
		respond(c, http.StatusNotFound, false, message, nil)
	default:
		logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Failed to " + action)
		respond(c, http.StatusInternalServerError, false, internalErrorMessage, nil)
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
