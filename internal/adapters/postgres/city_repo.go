package postgres

import (
	"context"
	"strconv"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// ListByCountry returns a country's cities ordered by name, with per-type
// venue counts.
func (r *CityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ci.id, ci.country_id, ci.name,
		       COUNT(*) FILTER (WHERE v.type = 'mosque'),
		       COUNT(*) FILTER (WHERE v.type = 'restaurant'),
		       ci.created_at
		FROM cities ci
		LEFT JOIN venues v ON v.city_id = ci.id
		WHERE ci.country_id = $1
		GROUP BY ci.id
		ORDER BY ci.name
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		var id, country int64
		if err := rows.Scan(&id, &country, &c.Name,
			&c.MosqueCount, &c.RestaurantCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = strconv.FormatInt(id, 10)
		c.CountryID = strconv.FormatInt(country, 10)
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
