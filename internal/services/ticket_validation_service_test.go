package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/events"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfirmer struct {
	result bool
	calls  []int64
}

func (f *fakeConfirmer) Confirm(ctx context.Context, bookingID int64) (bool, error) {
	f.calls = append(f.calls, bookingID)
	return f.result, nil
}

type validationFixture struct {
	svc       *TicketValidationService
	mock      sqlmock.Sqlmock
	confirmer *fakeConfirmer
	publisher *recordingPublisher
}

func newValidationFixture(t *testing.T) *validationFixture {
	db, mock := newMockDB(t)
	confirmer := &fakeConfirmer{result: true}
	publisher := &recordingPublisher{}

	svc := NewTicketValidationService(
		database.NewTicketRepository(db),
		database.NewBookingRepository(db),
		confirmer,
		publisher,
		BoardingWindow{OpensBefore: 2 * time.Hour, ClosesAfter: 30 * time.Minute},
		quietLogger(),
	)
	svc.now = clockAt(fixedNow)
	return &validationFixture{svc: svc, mock: mock, confirmer: confirmer, publisher: publisher}
}

func expectTicket(mock sqlmock.Sqlmock, status models.TicketStatus) {
	mock.ExpectQuery("WHERE UPPER\\(tk.ticket_code\\) = UPPER\\(\\$1\\)").
		WithArgs(testBookingCode + "-11").
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "ticket_code", "passenger_name", "status", "seat_number", "carriage_number"}).
			AddRow(100, 42, testBookingCode+"-11", "Lan Nguyen", string(status), "A1", "C1"))
}

func expectBookingWithTrip(mock sqlmock.Sqlmock, status models.BookingStatus, departure time.Time) {
	mock.ExpectQuery("FROM bookings b (.+) WHERE b.id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "booking_code", "booking_status", "trip_code", "departure_time", "departure_station_name", "arrival_station_name"}).
			AddRow(42, 5, testBookingCode, string(status), "SE1-0301", departure, "Alpha", "Delta"))
}

func TestTicketValidationService_ConfirmedBookingChecksIn(t *testing.T) {
	f := newValidationFixture(t)

	expectTicket(f.mock, models.TicketStatusValid)
	expectBookingWithTrip(f.mock, models.BookingStatusConfirmed, fixedNow.Add(time.Hour))
	f.mock.ExpectExec("UPDATE tickets SET status = 'CheckedIn'").
		WithArgs(int64(100), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := f.svc.ValidateAndCheckIn(context.Background(), " "+testBookingCode+"-11 ", "staff-7")
	require.NoError(t, err)

	assert.Equal(t, "CheckedIn", resp.Status)
	assert.Equal(t, "A1", resp.SeatNumber)
	assert.Equal(t, "staff-7", resp.CheckedInBy)
	assert.Empty(t, f.confirmer.calls)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeTicketCheckedIn, f.publisher.events[0].Type)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTicketValidationService_TemporaryBookingIsConfirmedFirst(t *testing.T) {
	f := newValidationFixture(t)

	expectTicket(f.mock, models.TicketStatusPending)
	expectBookingWithTrip(f.mock, models.BookingStatusTemporary, fixedNow.Add(time.Hour))
	f.mock.ExpectExec("UPDATE tickets SET status = 'CheckedIn'").WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := f.svc.ValidateAndCheckIn(context.Background(), testBookingCode+"-11", "staff-7")
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, f.confirmer.calls)
}

func TestTicketValidationService_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		ticket    models.TicketStatus
		booking   models.BookingStatus
		departure time.Time
		confirms  bool
		want      ErrorKind
	}{
		{"too early", models.TicketStatusValid, models.BookingStatusConfirmed, fixedNow.Add(3 * time.Hour), true, KindValidation},
		{"too late", models.TicketStatusValid, models.BookingStatusConfirmed, fixedNow.Add(-31 * time.Minute), true, KindValidation},
		{"already checked in", models.TicketStatusCheckedIn, models.BookingStatusConfirmed, fixedNow, true, KindConflict},
		{"cancelled ticket", models.TicketStatusCancelled, models.BookingStatusCancelled, fixedNow, true, KindConflict},
		{"expired booking", models.TicketStatusPending, models.BookingStatusExpired, fixedNow, true, KindConflict},
		{"hold ran out", models.TicketStatusPending, models.BookingStatusTemporary, fixedNow, false, KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newValidationFixture(t)
			f.confirmer.result = tt.confirms

			expectTicket(f.mock, tt.ticket)
			expectBookingWithTrip(f.mock, tt.booking, tt.departure)

			resp, err := f.svc.ValidateAndCheckIn(context.Background(), testBookingCode+"-11", "staff-7")
			assert.Nil(t, resp)
			assert.Equal(t, tt.want, KindOf(err))
			assert.Empty(t, f.publisher.events)
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestTicketValidationService_UnknownTicket(t *testing.T) {
	f := newValidationFixture(t)
	f.mock.ExpectQuery("FROM tickets tk").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := f.svc.ValidateAndCheckIn(context.Background(), "NOPE", "staff-7")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
