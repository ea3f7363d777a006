package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	expires := fixedNow.Add(5 * time.Minute)
	name := "Nguyen Van A"
	booking := &models.Booking{
		TripID:         1,
		BookingCode:    "GB20260301080000-A1B2C3",
		BookingStatus:  models.BookingStatusTemporary,
		PaymentStatus:  models.PaymentStatusPending,
		TotalPrice:     decimal.Zero,
		ExpirationTime: &expires,
		ContactName:    &name,
		IsGuestBooking: true,
		CreatedAt:      fixedNow,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(nil, int64(1), "GB20260301080000-A1B2C3", models.BookingStatusTemporary, models.PaymentStatusPending,
			decimal.Zero, expires, nil, nil, nil, nil, name, nil, nil, true, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tx, booking))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(42), booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		regex string
		rows  int64
		call  func(repo *BookingRepository, ctx context.Context, tx *sqlx.Tx) (bool, error)
		want  bool
	}{
		{
			name:  "confirm applies",
			regex: "UPDATE bookings SET booking_status = 'Confirmed', payment_status = 'Paid'",
			rows:  1,
			call: func(repo *BookingRepository, ctx context.Context, tx *sqlx.Tx) (bool, error) {
				return repo.MarkConfirmed(ctx, tx, 42, fixedNow)
			},
			want: true,
		},
		{
			name:  "cancel on non temporary is a no-op",
			regex: "UPDATE bookings SET booking_status = 'Cancelled'",
			rows:  0,
			call: func(repo *BookingRepository, ctx context.Context, tx *sqlx.Tx) (bool, error) {
				return repo.MarkCancelled(ctx, tx, 42, fixedNow)
			},
			want: false,
		},
		{
			name:  "expire applies",
			regex: "UPDATE bookings SET booking_status = 'Expired'",
			rows:  1,
			call: func(repo *BookingRepository, ctx context.Context, tx *sqlx.Tx) (bool, error) {
				return repo.MarkExpired(ctx, tx, 42, fixedNow)
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewBookingRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(tt.regex).
				WithArgs(int64(42), fixedNow).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))
			mock.ExpectRollback()

			tx, err := db.Beginx()
			require.NoError(t, err)

			ok, err := tt.call(repo, context.Background(), tx)
			tx.Rollback()

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_ExtendExpiration(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	expires := fixedNow.Add(5 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET expiration_time = \\$2 WHERE id = \\$1 AND booking_status = 'Temporary' AND expiration_time > \\$3").
		WithArgs(int64(42), expires, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	ok, err := repo.ExtendExpiration(context.Background(), tx, 42, expires, fixedNow)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetWithTripByCode(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectQuery("WHERE UPPER\\(b.booking_code\\) = UPPER\\(\\$1\\)").
			WithArgs("gb-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		booking, err := repo.GetWithTripByCode(context.Background(), "gb-missing")
		assert.NoError(t, err)
		assert.Nil(t, booking)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ListExpiredTemporaryIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery("SELECT id FROM bookings WHERE booking_status = 'Temporary' AND expiration_time <= \\$1").
		WithArgs(fixedNow, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))

	ids, err := repo.ListExpiredTemporaryIDs(context.Background(), fixedNow, 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_StatsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_bookings", "temporary_bookings", "confirmed_bookings",
			"cancelled_bookings", "expired_bookings", "total_spent",
		}).AddRow(5, 1, 2, 1, 1, "250000.00"))

	stats, err := repo.StatsByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalBookings)
	assert.Equal(t, 2, stats.ConfirmedBookings)
	assert.Equal(t, 250000.0, stats.TotalSpent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
