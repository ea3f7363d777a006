package services

import (
	"strings"
	"time"

	"github.com/fastrail/booking-backend/internal/models"
	"github.com/google/uuid"
)

const bookingCodeTimeLayout = "20060102150405"

// GenerateBookingCode builds a human readable booking code:
// GB (guest) or BK (user), the UTC timestamp to the second, and a random
// six character upper-case hex suffix, e.g. BK20260301080000-3FA9C1.
func GenerateBookingCode(isGuest bool, now time.Time) string {
	prefix := models.BookingCodePrefixUser
	if isGuest {
		prefix = models.BookingCodePrefixGuest
	}

	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + now.UTC().Format(bookingCodeTimeLayout) + "-" + suffix
}
