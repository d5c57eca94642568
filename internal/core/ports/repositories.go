package ports

import (
	"context"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// CountryRepository reads the country hierarchy.
type CountryRepository interface {
	List(ctx context.Context) ([]domain.Country, error)
}

// CityRepository reads cities per country.
type CityRepository interface {
	ListByCountry(ctx context.Context, countryID string) ([]domain.City, error)
}

// VenueRepository reads venues. Implementations apply only server-side
// filters (city, type, radius); free-text search is the caller's concern.
type VenueRepository interface {
	// ListByCity returns venues ordered by name ascending. An empty CityID
	// spans all cities; q.SearchText is ignored here.
	ListByCity(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error)

	// GetByIDs is a batch lookup ordered by name. Missing IDs are simply
	// absent from the result, not an error.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error)

	// FindWithinRadius returns venues inside the radius, the backend being
	// the source of truth for the boundary. Returned venues may carry a
	// precomputed DistanceKm.
	FindWithinRadius(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error)
}

// ReviewRepository persists venue reviews.
type ReviewRepository interface {
	ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error)
	Create(ctx context.Context, review *domain.Review) error
}

// FavoriteStore persists a user's favorite venue IDs. Add and Remove are
// idempotent set mutations.
type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, venueID string) error
	Remove(ctx context.Context, userID, venueID string) error
}
