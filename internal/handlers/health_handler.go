package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports database and redis reachability
type HealthHandler struct {
	db      Pinger
	redis   Pinger // nil when rate limiting runs without redis
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db, redis Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, version: version}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"database":  "healthy",
		"redis":     "disabled",
		"version":   h.version,
		"timestamp": time.Now().Unix(),
	}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unhealthy"
	}

	if h.redis != nil {
		body["redis"] = "healthy"
		if err := h.redis.Ping(ctx); err != nil {
			// rate limiting fails open, so redis alone does not make the service unhealthy
			body["status"] = "degraded"
			body["redis"] = "unhealthy"
			if status == http.StatusServiceUnavailable {
				body["status"] = "unhealthy"
			}
		}
	}

	c.JSON(status, body)
}
