package postgres

import (
	"context"
	"strconv"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// CountryRepo implements ports.CountryRepository with pgx.
type CountryRepo struct {
	db *DB
}

// NewCountryRepo creates a new CountryRepo.
func NewCountryRepo(db *DB) *CountryRepo {
	return &CountryRepo{db: db}
}

// List returns all countries ordered by id, with live venue and city counts.
func (r *CountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.id, c.name, c.flag_emoji, c.status,
		       (SELECT COUNT(*) FROM cities ci WHERE ci.country_id = c.id),
		       (SELECT COUNT(*) FROM venues v JOIN cities ci ON v.city_id = ci.id WHERE ci.country_id = c.id),
		       c.created_at
		FROM countries c
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []domain.Country
	for rows.Next() {
		var c domain.Country
		var id int64
		if err := rows.Scan(&id, &c.Name, &c.FlagEmoji, &c.Status,
			&c.CityCount, &c.VenueCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = strconv.FormatInt(id, 10)
		countries = append(countries, c)
	}
	return countries, rows.Err()
}
