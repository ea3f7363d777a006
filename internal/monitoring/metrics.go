package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking workflow operations by outcome",
		},
		[]string{"operation", "result"},
	)

	seatConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_seat_conflicts_total",
			Help: "Hold attempts rejected because a seat segment was taken",
		},
	)

	holdCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_hold_create_duration_seconds",
			Help:    "Time to place a temporary hold",
			Buckets: prometheus.DefBuckets,
		},
	)

	expiredHolds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_expired_holds_total",
			Help: "Temporary bookings moved to Expired",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Operation results
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// TrackBookingOperation counts one booking operation outcome
func TrackBookingOperation(operation, result string) {
	bookingOperations.WithLabelValues(operation, result).Inc()
}

// TrackSeatConflict counts a hold rejected by a taken seat
func TrackSeatConflict() {
	seatConflicts.Inc()
}

// TrackHoldCreate records how long placing a hold took
func TrackHoldCreate(d time.Duration) {
	holdCreateDuration.Observe(d.Seconds())
}

// TrackExpiredHolds counts bookings expired by the sweeper or lazily
func TrackExpiredHolds(n int) {
	expiredHolds.Add(float64(n))
}

// GinMiddleware records request count and latency per matched route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
