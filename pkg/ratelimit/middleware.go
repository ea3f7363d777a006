package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// KeyFunc extracts the client identity a limit is counted against
type KeyFunc func(c *gin.Context) string

// Middleware limits requests per client for one scope. When Redis is
// unreachable the request is let through and the failure logged.
func Middleware(rateLimiter *RateLimiter, scope string, limit int, keyFunc KeyFunc, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := keyFunc(c)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), scope, clientKey, limit)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"scope":  scope,
				"client": clientKey,
			}).Warn("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.FormatInt(result.ResetTime-rateLimiter.now().Unix(), 10))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":   false,
				"message":   "Too many requests. Please try again later.",
				"requestId": c.GetString("request_id"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
