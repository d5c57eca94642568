package rest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// CountryRepo implements ports.CountryRepository against the hosted backend.
type CountryRepo struct {
	client *Client
}

// NewCountryRepo creates a new CountryRepo.
func NewCountryRepo(client *Client) *CountryRepo {
	return &CountryRepo{client: client}
}

type countryRow struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	FlagEmoji  string    `json:"flag_emoji"`
	Status     string    `json:"status"`
	CityCount  int       `json:"city_count"`
	VenueCount int       `json:"venue_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// List returns all countries ordered by ID.
func (r *CountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "id")

	var rows []countryRow
	if err := r.client.get(ctx, "countries", query, &rows); err != nil {
		return nil, err
	}

	countries := make([]domain.Country, len(rows))
	for i, row := range rows {
		countries[i] = domain.Country{
			ID:         strconv.FormatInt(row.ID, 10),
			Name:       row.Name,
			FlagEmoji:  row.FlagEmoji,
			Status:     row.Status,
			CityCount:  row.CityCount,
			VenueCount: row.VenueCount,
			CreatedAt:  row.CreatedAt,
		}
	}
	return countries, nil
}
