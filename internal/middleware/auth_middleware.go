package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fastrail/booking-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

const staffContextKey = "staff_context"

// StaffContext holds the authenticated staff member's information
type StaffContext struct {
	StaffID string
	Name    string
	Roles   []string
}

// HasRole reports whether the staff member carries role
func (s *StaffContext) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthMiddleware validates JWT tokens and sets the staff context
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, jwtlib.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthorized",
					"message": "Access token has expired",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthorized",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		c.Set(staffContextKey, &StaffContext{
			StaffID: claims.StaffID,
			Name:    claims.Name,
			Roles:   claims.Roles,
		})

		c.Next()
	}
}

// RequireRole allows the request through only if the staff member carries one of roles.
// Must be used after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, exists := GetStaffContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Staff context not found",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if staff.HasRole(role) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Insufficient permissions",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
		c.Abort()
	}
}

// GetStaffContext retrieves the staff context set by AuthMiddleware
func GetStaffContext(c *gin.Context) (*StaffContext, bool) {
	value, exists := c.Get(staffContextKey)
	if !exists {
		return nil, false
	}
	staff, ok := value.(*StaffContext)
	return staff, ok
}
