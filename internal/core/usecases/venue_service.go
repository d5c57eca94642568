package usecases

import (
	"context"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
)

// VenueService handles venue listing and lookup.
type VenueService struct {
	venues ports.VenueRepository
}

// NewVenueService creates a new VenueService.
func NewVenueService(venues ports.VenueRepository) *VenueService {
	return &VenueService{venues: venues}
}

// QueryByCity returns venues matching the query. City and type constraints
// are applied by the backend; the search text is applied here as a
// case-insensitive substring match against name or address, because
// free-text search is not indexed server-side. Backend name ordering is
// preserved.
func (s *VenueService) QueryByCity(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
	venues, err := s.venues.ListByCity(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.SearchText == "" {
		return venues, nil
	}

	matched := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		if v.MatchesSearch(q.SearchText) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// QueryByIDs resolves venues by ID, used for favorites. Empty input
// short-circuits without issuing a request. Duplicate IDs are collapsed.
// IDs that no longer resolve (deleted venues) are silently absent.
func (s *VenueService) QueryByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	return s.venues.GetByIDs(ctx, unique)
}
