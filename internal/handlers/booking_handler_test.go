package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fastrail/booking-backend/internal/middleware"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/fastrail/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkflow struct {
	createResp *models.CreateBookingResponse
	createErr  error
	gotCreate  *models.CreateBookingRequest
	cancelled  bool
	extended   bool
	err        error
}

func (f *fakeWorkflow) CreateTemporaryBooking(_ context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	f.gotCreate = req
	return f.createResp, f.createErr
}

func (f *fakeWorkflow) Cancel(context.Context, int64) (bool, error) { return f.cancelled, f.err }
func (f *fakeWorkflow) Extend(context.Context, int64) (bool, error) { return f.extended, f.err }

type fakeQueries struct {
	details   *models.BookingDetailsResponse
	page      *models.UserBookingsResponse
	stats     *models.BookingStats
	err       error
	gotCode   string
	gotQuery  models.UserBookingsQuery
	gotUserID int64
}

func (f *fakeQueries) GetDetails(context.Context, int64) (*models.BookingDetailsResponse, error) {
	return f.details, f.err
}

func (f *fakeQueries) LookupByCode(_ context.Context, code string) (*models.BookingDetailsResponse, error) {
	f.gotCode = code
	return f.details, f.err
}

func (f *fakeQueries) UserBookings(_ context.Context, userID int64, q models.UserBookingsQuery) (*models.UserBookingsResponse, error) {
	f.gotUserID, f.gotQuery = userID, q
	return f.page, f.err
}

func (f *fakeQueries) UserStats(context.Context, int64) (*models.BookingStats, error) {
	return f.stats, f.err
}

type fakeRenderer struct {
	pdf []byte
	err error
}

func (f *fakeRenderer) GenerateETicket(_ context.Context, code string) ([]byte, string, error) {
	return f.pdf, "ETICKET_" + code + ".pdf", f.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newBookingRouter(h *BookingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	api := router.Group("/api/booking")
	api.POST("/create-temporary", h.CreateTemporary)
	api.POST("/guest-lookup", h.GuestLookup)
	api.GET("/:id", h.GetBooking)
	api.POST("/:id/cancel", h.Cancel)
	api.POST("/:id/extend", h.Extend)
	api.GET("/user/:userId", h.UserBookings)
	api.GET("/user/:userId/stats", h.UserStats)
	api.GET("/code/:code/ticket.pdf", h.ETicket)
	return router
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
}

func do(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

const createBody = `{
	"userId": 42,
	"tripId": 5,
	"departureStationId": 1,
	"arrivalStationId": 3,
	"tickets": [{"seatId": 11, "passengerName": "An Nguyen", "passengerPhone": "0901234567", "passengerEmail": "an@example.com"}]
}`

func TestCreateTemporary(t *testing.T) {
	expires := time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC)

	t.Run("Created", func(t *testing.T) {
		workflow := &fakeWorkflow{createResp: &models.CreateBookingResponse{
			Success:        true,
			BookingID:      100,
			BookingCode:    "BK20260301080000-ABC123",
			TotalPrice:     100000,
			ExpirationTime: &expires,
			Message:        "Seats held. Please complete payment within 5 minutes.",
		}}
		router := newBookingRouter(NewBookingHandler(workflow, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/create-temporary", createBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.RequestID)

		var data models.CreateBookingResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "BK20260301080000-ABC123", data.BookingCode)
		assert.Equal(t, float64(100000), data.TotalPrice)

		require.NotNil(t, workflow.gotCreate)
		assert.Equal(t, int64(42), *workflow.gotCreate.UserID)
		assert.Equal(t, int64(11), workflow.gotCreate.Tickets[0].SeatID)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"Validation", &services.BookingError{Kind: services.KindValidation, Message: "Passenger name is required"}, http.StatusBadRequest, "Passenger name is required"},
		{"Conflict", &services.BookingError{Kind: services.KindConflict, Message: "Seat A1 (id 11) is already taken"}, http.StatusConflict, "Seat A1 (id 11) is already taken"},
		{"NotFound", &services.BookingError{Kind: services.KindNotFound, Message: "Trip not found"}, http.StatusNotFound, "Trip not found"},
		{"System", &services.BookingError{Kind: services.KindSystem, Message: "System error while processing the booking. Please try again later."}, http.StatusInternalServerError, "System error while processing the booking. Please try again later."},
		{"Unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workflow := &fakeWorkflow{createErr: tt.err}
			router := newBookingRouter(NewBookingHandler(workflow, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

			w, env := do(t, router, "POST", "/api/booking/create-temporary", createBody)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Message)

			var data models.CreateBookingResponse
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.False(t, data.Success)
			assert.Equal(t, tt.wantMsg, data.Message)
		})
	}

	t.Run("MalformedBody", func(t *testing.T) {
		workflow := &fakeWorkflow{}
		router := newBookingRouter(NewBookingHandler(workflow, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/create-temporary", `{"tripId": "five"`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Nil(t, workflow.gotCreate)
	})
}

func TestGuestLookup(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		queries := &fakeQueries{details: &models.BookingDetailsResponse{BookingID: 100, BookingCode: "GB20260301080000-ABC123"}}
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, queries, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/guest-lookup", `{"bookingCode":"gb20260301080000-abc123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "gb20260301080000-abc123", queries.gotCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		queries := &fakeQueries{err: &services.BookingError{Kind: services.KindNotFound, Message: "No booking found with this code", Err: services.ErrBookingNotFound}}
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, queries, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/guest-lookup", `{"bookingCode":"GB-NOPE"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No booking found with this code", env.Message)
	})

	t.Run("MissingCode", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, _ := do(t, router, "POST", "/api/booking/guest-lookup", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetBooking(t *testing.T) {
	t.Run("InvalidID", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "GET", "/api/booking/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid id", env.Message)
	})

	t.Run("DatabaseErrorIsHidden", func(t *testing.T) {
		queries := &fakeQueries{err: errors.New("failed to get booking: driver: bad connection")}
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, queries, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "GET", "/api/booking/100", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, internalErrorMessage, env.Message)
		assert.NotContains(t, w.Body.String(), "bad connection")
	})
}

func TestCancelAndExtend(t *testing.T) {
	t.Run("Cancelled", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{cancelled: true}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/100/cancel", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("CancelRefused", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/100/cancel", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("CancelUnknownBooking", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{err: services.ErrBookingNotFound}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, _ := do(t, router, "POST", "/api/booking/100/cancel", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Extended", func(t *testing.T) {
		queries := &fakeQueries{details: &models.BookingDetailsResponse{BookingID: 100, CanExtend: true, TimeRemainingSeconds: 300}}
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{extended: true}, queries, &fakeRenderer{}, quietLogger()))

		w, env := do(t, router, "POST", "/api/booking/100/extend", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var data models.BookingDetailsResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(300), data.TimeRemainingSeconds)
	})

	t.Run("ExtendRefused", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, &fakeRenderer{}, quietLogger()))

		w, _ := do(t, router, "POST", "/api/booking/100/extend", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserBookings(t *testing.T) {
	queries := &fakeQueries{
		page:  &models.UserBookingsResponse{Page: 2, PageSize: 5, Total: 7},
		stats: &models.BookingStats{TotalBookings: 7, ConfirmedBookings: 4, TotalSpent: 400000},
	}
	router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, queries, &fakeRenderer{}, quietLogger()))

	t.Run("History", func(t *testing.T) {
		w, env := do(t, router, "GET", "/api/booking/user/42?status=Confirmed&page=2&pageSize=5", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, int64(42), queries.gotUserID)
		assert.Equal(t, models.UserBookingsQuery{Status: "Confirmed", Page: 2, PageSize: 5}, queries.gotQuery)
	})

	t.Run("Stats", func(t *testing.T) {
		w, env := do(t, router, "GET", "/api/booking/user/42/stats", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var stats models.BookingStats
		require.NoError(t, json.Unmarshal(env.Data, &stats))
		assert.Equal(t, 4, stats.ConfirmedBookings)
	})
}

func TestETicket(t *testing.T) {
	t.Run("Rendered", func(t *testing.T) {
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, &fakeRenderer{pdf: []byte("%PDF-1.3")}, quietLogger()))

		w, _ := do(t, router, "GET", "/api/booking/code/BK1/ticket.pdf", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "ETICKET_BK1.pdf")
	})

	t.Run("NotConfirmed", func(t *testing.T) {
		renderer := &fakeRenderer{err: &services.BookingError{Kind: services.KindConflict, Message: "E-tickets are only available for confirmed bookings"}}
		router := newBookingRouter(NewBookingHandler(&fakeWorkflow{}, &fakeQueries{}, renderer, quietLogger()))

		w, env := do(t, router, "GET", "/api/booking/code/BK1/ticket.pdf", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.False(t, env.Success)
	})
}
