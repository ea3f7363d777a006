package middleware

import (
	"time"

	"github.com/fastrail/booking-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		device := utils.ParseUserAgent(utils.GetUserAgent(c))
		entry := logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  utils.GetRealIP(c),
			"device":     device.DeviceType,
			"os":         device.OS,
			"browser":    device.Browser,
			"bot":        device.IsBot,
		})

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
