package services

import (
	"context"
	"fmt"

	"github.com/fastrail/booking-backend/internal/database"
	"github.com/fastrail/booking-backend/internal/models"
)

// RouteSegmentResolver turns a (route, from, to) request into the ordered
// segments a passenger travels over.
type RouteSegmentResolver struct {
	segmentRepo *database.RouteSegmentRepository
}

// NewRouteSegmentResolver creates a new RouteSegmentResolver
func NewRouteSegmentResolver(segmentRepo *database.RouteSegmentRepository) *RouteSegmentResolver {
	return &RouteSegmentResolver{segmentRepo: segmentRepo}
}

// Resolve returns the ids of the segments from fromStationID to toStationID.
// An empty result means the pair does not describe a forward path on the route.
func (r *RouteSegmentResolver) Resolve(ctx context.Context, routeID, fromStationID, toStationID int64) ([]int64, error) {
	segments, err := r.ResolveSegments(ctx, routeID, fromStationID, toStationID)
	if err != nil {
		return nil, err
	}
	return models.SegmentIDs(segments), nil
}

// ResolveSegments is Resolve returning the full segment rows
func (r *RouteSegmentResolver) ResolveSegments(ctx context.Context, routeID, fromStationID, toStationID int64) ([]models.RouteSegment, error) {
	segments, err := r.segmentRepo.ListActiveByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route segments: %w", err)
	}
	return segmentPath(segments, fromStationID, toStationID), nil
}

// segmentPath selects the closed interval [f, t] of segment orders, where f is
// the order of the segment leaving fromStationID and t the order of the segment
// arriving at toStationID. The segment ending at the destination is included.
// segments must be sorted by SegmentOrder.
func segmentPath(segments []models.RouteSegment, fromStationID, toStationID int64) []models.RouteSegment {
	fromOrder, toOrder := -1, -1
	for _, s := range segments {
		if fromOrder < 0 && s.FromStationID == fromStationID {
			fromOrder = s.SegmentOrder
		}
		if s.ToStationID == toStationID {
			toOrder = s.SegmentOrder
		}
	}

	if fromOrder < 0 || toOrder < 0 || fromOrder > toOrder {
		return nil
	}

	var path []models.RouteSegment
	for _, s := range segments {
		if s.SegmentOrder >= fromOrder && s.SegmentOrder <= toOrder {
			path = append(path, s)
		}
	}
	return path
}
