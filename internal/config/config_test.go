package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/fastrail")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "pgx", cfg.Database.Driver)
		assert.Equal(t, 5*time.Minute, cfg.Booking.HoldTTL)
		assert.Equal(t, "*/30 * * * * *", cfg.Booking.ExpirySweepCron)
		assert.Equal(t, 2*time.Hour, cfg.Booking.BoardingOpensIn)
		assert.Equal(t, 30*time.Minute, cfg.Booking.BoardingClosesIn)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/fastrail")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DATABASE_DRIVER", "postgres")
		t.Setenv("BOOKING_HOLD_TTL_SECONDS", "600")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 10*time.Minute, cfg.Booking.HoldTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("MissingDatabaseURL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()
		assert.EqualError(t, err, "DATABASE_URL is required")
	})

	t.Run("InvalidDriver", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/fastrail")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DATABASE_DRIVER", "mysql")

		_, err := Load()
		assert.Error(t, err)
	})
}
