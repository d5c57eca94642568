package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// VenueRepo implements ports.VenueRepository with pgx.
type VenueRepo struct {
	db *DB
}

// NewVenueRepo creates a new VenueRepo.
func NewVenueRepo(db *DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = `
	id, type, name, COALESCE(address, ''), city_id,
	latitude, longitude, overall_rating, review_count,
	prayer_facilities_rating, cleanliness_rating,
	halal_certification_rating, food_quality_rating,
	created_at`

func scanVenue(row pgx.Row) (domain.Venue, error) {
	var v domain.Venue
	var id, cityID int64
	var lat, lon *float64
	var prayer, clean, cert, food *float64

	err := row.Scan(&id, &v.Type, &v.Name, &v.Address, &cityID,
		&lat, &lon, &v.Rating, &v.ReviewCount,
		&prayer, &clean, &cert, &food,
		&v.CreatedAt)
	if err != nil {
		return v, err
	}

	v.ID = strconv.FormatInt(id, 10)
	v.CityID = strconv.FormatInt(cityID, 10)
	if lat != nil && lon != nil {
		v.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	switch v.Type {
	case domain.VenueMosque:
		if prayer != nil || clean != nil {
			v.Mosque = &domain.MosqueRatings{
				PrayerFacilities: derefOrZero(prayer),
				Cleanliness:      derefOrZero(clean),
			}
		}
	case domain.VenueRestaurant:
		if cert != nil || food != nil {
			v.Restaurant = &domain.RestaurantRatings{
				HalalCertification: derefOrZero(cert),
				FoodQuality:        derefOrZero(food),
			}
		}
	}
	return v, nil
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func collectVenues(rows pgx.Rows) ([]domain.Venue, error) {
	defer rows.Close()
	var venues []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// ListByCity returns venues ordered by name, constrained by city and type
// when set. Free-text matching stays out of the query on purpose.
func (r *VenueRepo) ListByCity(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
	sql := `SELECT ` + venueColumns + ` FROM venues WHERE TRUE`
	args := []interface{}{}
	if q.CityID != "" {
		args = append(args, q.CityID)
		sql += ` AND city_id = $` + strconv.Itoa(len(args))
	}
	if q.Type.IsFilter() {
		args = append(args, string(q.Type))
		sql += ` AND type = $` + strconv.Itoa(len(args))
	}
	sql += ` ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectVenues(rows)
}

// GetByIDs returns venues matching the given ids, ordered by name. Unknown
// ids are skipped silently.
func (r *VenueRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	numeric := make([]int64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues WHERE id = ANY($1)
		ORDER BY name
	`, numeric)
	if err != nil {
		return nil, err
	}
	return collectVenues(rows)
}

// FindWithinRadius delegates to the venues_within_radius SQL function so
// the radius boundary matches the hosted backend exactly.
func (r *VenueRepo) FindWithinRadius(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error) {
	var venueType *string
	if q.Type.IsFilter() {
		t := string(q.Type)
		venueType = &t
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, type, name, address, city_id,
		       latitude, longitude, overall_rating, review_count,
		       prayer_facilities_rating, cleanliness_rating,
		       halal_certification_rating, food_quality_rating,
		       created_at, distance_km
		FROM venues_within_radius($1, $2, $3, $4)
	`, q.Origin.Lat, q.Origin.Lon, q.RadiusKm, venueType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		var id, cityID int64
		var lat, lon *float64
		var prayer, clean, cert, food *float64
		var dist float64
		if err := rows.Scan(&id, &v.Type, &v.Name, &v.Address, &cityID,
			&lat, &lon, &v.Rating, &v.ReviewCount,
			&prayer, &clean, &cert, &food,
			&v.CreatedAt, &dist); err != nil {
			return nil, err
		}
		v.ID = strconv.FormatInt(id, 10)
		v.CityID = strconv.FormatInt(cityID, 10)
		if lat != nil && lon != nil {
			v.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
		}
		switch v.Type {
		case domain.VenueMosque:
			if prayer != nil || clean != nil {
				v.Mosque = &domain.MosqueRatings{
					PrayerFacilities: derefOrZero(prayer),
					Cleanliness:      derefOrZero(clean),
				}
			}
		case domain.VenueRestaurant:
			if cert != nil || food != nil {
				v.Restaurant = &domain.RestaurantRatings{
					HalalCertification: derefOrZero(cert),
					FoodQuality:        derefOrZero(food),
				}
			}
		}
		v.DistanceKm = &dist
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// UpsertBatch inserts or updates venues keyed on (city_id, name), used by
// the seeder. Ratings already aggregated upstream are written as-is.
func (r *VenueRepo) UpsertBatch(ctx context.Context, venues []domain.Venue) error {
	batch := &pgx.Batch{}
	for _, v := range venues {
		cityID, err := strconv.ParseInt(v.CityID, 10, 64)
		if err != nil {
			return &domain.ValidationError{Field: "city_id", Reason: "must be numeric"}
		}
		var lat, lon *float64
		if v.Location != nil {
			lat, lon = &v.Location.Lat, &v.Location.Lon
		}
		var prayer, clean, cert, food *float64
		if v.Mosque != nil {
			prayer, clean = &v.Mosque.PrayerFacilities, &v.Mosque.Cleanliness
		}
		if v.Restaurant != nil {
			cert, food = &v.Restaurant.HalalCertification, &v.Restaurant.FoodQuality
		}
		batch.Queue(`
			INSERT INTO venues (type, name, address, city_id, latitude, longitude,
			                    overall_rating, review_count,
			                    prayer_facilities_rating, cleanliness_rating,
			                    halal_certification_rating, food_quality_rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (city_id, name) DO UPDATE
			SET address = EXCLUDED.address,
			    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			    overall_rating = EXCLUDED.overall_rating,
			    review_count = EXCLUDED.review_count,
			    prayer_facilities_rating = EXCLUDED.prayer_facilities_rating,
			    cleanliness_rating = EXCLUDED.cleanliness_rating,
			    halal_certification_rating = EXCLUDED.halal_certification_rating,
			    food_quality_rating = EXCLUDED.food_quality_rating
		`, string(v.Type), v.Name, v.Address, cityID, lat, lon,
			v.Rating, v.ReviewCount, prayer, clean, cert, food)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range venues {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
