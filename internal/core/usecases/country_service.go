package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
)

// CountryService lists browsable countries.
type CountryService struct {
	countries ports.CountryRepository
	cache     ports.CacheService
}

// NewCountryService creates a new CountryService.
func NewCountryService(countries ports.CountryRepository, cache ports.CacheService) *CountryService {
	return &CountryService{countries: countries, cache: cache}
}

// List returns all countries ordered by ID.
func (s *CountryService) List(ctx context.Context) ([]domain.Country, error) {
	const cacheKey = "countries:all"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var countries []domain.Country
			if err := json.Unmarshal(data, &countries); err == nil {
				return countries, nil
			}
		}
	}

	countries, err := s.countries.List(ctx)
	if err != nil {
		return nil, err
	}

	// Cache for an hour (the country list rarely changes)
	if s.cache != nil {
		if data, err := json.Marshal(countries); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return countries, nil
}
