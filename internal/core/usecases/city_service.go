package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
)

// CityService lists cities within a country.
type CityService struct {
	cities ports.CityRepository
	cache  ports.CacheService
}

// NewCityService creates a new CityService.
func NewCityService(cities ports.CityRepository, cache ports.CacheService) *CityService {
	return &CityService{cities: cities, cache: cache}
}

// ListByCountry returns the country's cities ordered by name.
func (s *CityService) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	if countryID == "" {
		return nil, fmt.Errorf("country id must not be empty")
	}

	cacheKey := "cities:country:" + countryID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cities []domain.City
			if err := json.Unmarshal(data, &cities); err == nil {
				return cities, nil
			}
		}
	}

	cities, err := s.cities.ListByCountry(ctx, countryID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(cities); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return cities, nil
}
