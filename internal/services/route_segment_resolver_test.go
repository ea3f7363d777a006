package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Route A(1) -> B(2) -> C(3) -> D(4)
func lineRoute() []models.RouteSegment {
	return []models.RouteSegment{
		{ID: 1, RouteID: 7, FromStationID: 1, ToStationID: 2, SegmentOrder: 1, DistanceKm: decimal.NewFromInt(25), IsActive: true},
		{ID: 2, RouteID: 7, FromStationID: 2, ToStationID: 3, SegmentOrder: 2, DistanceKm: decimal.NewFromInt(25), IsActive: true},
		{ID: 3, RouteID: 7, FromStationID: 3, ToStationID: 4, SegmentOrder: 3, DistanceKm: decimal.NewFromInt(40), IsActive: true},
	}
}

func TestSegmentPath(t *testing.T) {
	tests := []struct {
		name     string
		from, to int64
		want     []int64
	}{
		{"single hop", 1, 2, []int64{1}},
		{"two hops includes destination segment", 1, 3, []int64{1, 2}},
		{"whole route", 1, 4, []int64{1, 2, 3}},
		{"middle of route", 2, 4, []int64{2, 3}},
		{"backwards", 2, 1, []int64{}},
		{"same station", 2, 2, []int64{}},
		{"unknown origin", 9, 3, []int64{}},
		{"unknown destination", 1, 9, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.SegmentIDs(segmentPath(lineRoute(), tt.from, tt.to))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteSegmentResolver_Resolve(t *testing.T) {
	db, mock := newMockDB(t)
	resolver := NewRouteSegmentResolver(database.NewRouteSegmentRepository(db))

	rows := sqlmock.NewRows([]string{"id", "route_id", "from_station_id", "to_station_id", "segment_order", "distance_km", "is_active"})
	for _, s := range lineRoute() {
		rows.AddRow(s.ID, s.RouteID, s.FromStationID, s.ToStationID, s.SegmentOrder, s.DistanceKm.String(), true)
	}
	mock.ExpectQuery("FROM route_segments WHERE route_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	ids, err := resolver.Resolve(context.Background(), 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteSegmentResolver_ResolveError(t *testing.T) {
	db, mock := newMockDB(t)
	resolver := NewRouteSegmentResolver(database.NewRouteSegmentRepository(db))

	mock.ExpectQuery("FROM route_segments").WillReturnError(assert.AnError)

	_, err := resolver.ResolveSegments(context.Background(), 7, 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
