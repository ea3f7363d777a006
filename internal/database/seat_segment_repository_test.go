package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestSeatSegmentRepository_CountBlocking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatSegmentRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seat_segments").
		WithArgs(int64(1), int64(10), pq.Array([]int64{1, 2}), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountBlocking(context.Background(), 1, 10, []int64{1, 2}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatSegmentRepository_BlockedSeatIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatSegmentRepository(db)

	mock.ExpectQuery("SELECT DISTINCT seat_id FROM seat_segments").
		WithArgs(int64(1), pq.Array([]int64{1, 2}), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(10).AddRow(12))

	ids, err := repo.BlockedSeatIDs(context.Background(), 1, []int64{1, 2}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 12}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatSegmentRepository_Reserve(t *testing.T) {
	expires := fixedNow.Add(5 * time.Minute)

	tests := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		wantOK    bool
		wantError bool
	}{
		{
			name: "claimed",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO seat_segments (.+) ON CONFLICT \\(trip_id, seat_id, segment_id\\) DO UPDATE").
					WithArgs(int64(1), int64(10), int64(2), int64(55), fixedNow, expires).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(900))
			},
			wantOK: true,
		},
		{
			name: "held by another booking",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO seat_segments").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantOK: false,
		},
		{
			name: "unique violation from concurrent insert",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO seat_segments").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_seat_segments_trip_seat_segment"})
			},
			wantOK: false,
		},
		{
			name: "database failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO seat_segments").
					WillReturnError(errors.New("connection reset"))
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSeatSegmentRepository(db)

			mock.ExpectBegin()
			tt.setup(mock)
			mock.ExpectRollback()

			tx, err := db.Beginx()
			require.NoError(t, err)

			ok, err := repo.Reserve(context.Background(), tx, 1, 10, 2, 55, fixedNow, expires)
			tx.Rollback()

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSeatSegmentRepository_Transitions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatSegmentRepository(db)
	ctx := context.Background()
	expires := fixedNow.Add(5 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_segments SET status = 'Booked'").
		WithArgs(int64(55), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE seat_segments SET status = 'Available'").
		WithArgs(int64(56)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE seat_segments SET hold_expires_at = \\$2").
		WithArgs(int64(57), expires).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	booked, err := repo.MarkBooked(ctx, tx, 55, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), booked)

	released, err := repo.Release(ctx, tx, 56)
	require.NoError(t, err)
	assert.Equal(t, int64(3), released)

	extended, err := repo.ExtendHold(ctx, tx, 57, expires)
	require.NoError(t, err)
	assert.Equal(t, int64(1), extended)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatSegmentRepository_ReleaseStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSeatSegmentRepository(db)

	mock.ExpectExec("UPDATE seat_segments (.+) WHERE status = 'TemporaryReserved' AND hold_expires_at <= \\$1").
		WithArgs(fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ReleaseStale(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
