package rest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// CityRepo implements ports.CityRepository against the hosted backend.
type CityRepo struct {
	client *Client
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(client *Client) *CityRepo {
	return &CityRepo{client: client}
}

type cityRow struct {
	ID              int64     `json:"id"`
	CountryID       int64     `json:"country_id"`
	Name            string    `json:"name"`
	MosqueCount     int       `json:"mosque_count"`
	RestaurantCount int       `json:"restaurant_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListByCountry returns a country's cities ordered by name.
func (r *CityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "name")
	query.Set("country_id", "eq."+countryID)

	var rows []cityRow
	if err := r.client.get(ctx, "cities", query, &rows); err != nil {
		return nil, err
	}

	cities := make([]domain.City, len(rows))
	for i, row := range rows {
		cities[i] = domain.City{
			ID:              strconv.FormatInt(row.ID, 10),
			CountryID:       strconv.FormatInt(row.CountryID, 10),
			Name:            row.Name,
			MosqueCount:     row.MosqueCount,
			RestaurantCount: row.RestaurantCount,
			CreatedAt:       row.CreatedAt,
		}
	}
	return cities, nil
}
