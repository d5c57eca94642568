package usecases

import (
	"context"
	"math"
	"sort"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
	"github.com/samirrijal/halalfinder/internal/pkg/geospatial"
)

const defaultRadiusKm = 10.0

// NearbyService composes the location provider, the venue backend's radius
// search, and the distance calculator into a distance-sorted venue list.
type NearbyService struct {
	venues   ports.VenueRepository
	location ports.LocationProvider
}

// NewNearbyService creates a new NearbyService.
func NewNearbyService(venues ports.VenueRepository, location ports.LocationProvider) *NearbyService {
	return &NearbyService{venues: venues, location: location}
}

// FindNearby returns venues within radiusKm of the device location, sorted
// ascending by distance. Venues without coordinates sort last. A location
// failure propagates verbatim and no radius query is issued. An empty
// result is a valid success.
func (s *NearbyService) FindNearby(ctx context.Context, radiusKm float64, venueType domain.VenueType) ([]domain.Venue, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}

	origin, err := s.location.CurrentLocation(ctx)
	if err != nil {
		return nil, err
	}

	return s.FindNearbyAt(ctx, origin, radiusKm, venueType)
}

// FindNearbyAt is FindNearby with a caller-supplied origin, for clients
// that already know their coordinates.
func (s *NearbyService) FindNearbyAt(ctx context.Context, origin domain.GeoPoint, radiusKm float64, venueType domain.VenueType) ([]domain.Venue, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}

	venues, err := s.venues.FindWithinRadius(ctx, domain.NearbyQuery{
		Origin:   origin,
		RadiusKm: radiusKm,
		Type:     venueType,
	})
	if err != nil {
		return nil, err
	}

	return annotateByDistance(venues, origin), nil
}

// annotateByDistance fills in missing distances from the origin and sorts
// ascending. Server-supplied distances are preferred to avoid recompute
// divergence. Sorting uses full precision; only the annotated value is
// rounded for display. Coordinate-less venues get an infinite sort key but
// keep a nil DistanceKm.
func annotateByDistance(venues []domain.Venue, origin domain.GeoPoint) []domain.Venue {
	type ranked struct {
		venue domain.Venue
		key   float64
	}

	rankings := make([]ranked, len(venues))
	for i, v := range venues {
		key := math.Inf(1)
		switch {
		case v.DistanceKm != nil:
			key = *v.DistanceKm
		case v.Location != nil:
			d := geospatial.DistanceKm(origin, *v.Location)
			key = d
			rounded := geospatial.RoundKm(d)
			v.DistanceKm = &rounded
		}
		rankings[i] = ranked{venue: v, key: key}
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].key < rankings[j].key
	})

	sorted := make([]domain.Venue, len(rankings))
	for i, r := range rankings {
		sorted[i] = r.venue
	}
	return sorted
}
