package events

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingEventJSON(t *testing.T) {
	expires := time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC)
	event := BookingEvent{
		Type:           TypeBookingHeld,
		BookingID:      42,
		BookingCode:    "BK20260301080000-A1B2C3",
		TripID:         1,
		Status:         "Temporary",
		TotalPrice:     100000,
		ExpirationTime: &expires,
		OccurredAt:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, "booking.held", decoded["type"])
	assert.Equal(t, float64(42), decoded["bookingId"])
	assert.Equal(t, float64(100000), decoded["totalPrice"])
	assert.Equal(t, "2026-03-01T08:05:00Z", decoded["expirationTime"])
	assert.NotContains(t, decoded, "ticketCode")
}

func TestNoopPublisher(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var p Publisher = NewNoopPublisher(logger)
	assert.NoError(t, p.Publish(context.Background(), BookingEvent{Type: TypeBookingCancelled, BookingID: 1}))
	assert.NoError(t, p.Close())
}
