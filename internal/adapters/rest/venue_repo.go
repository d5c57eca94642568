package rest

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// VenueRepo implements ports.VenueRepository against the hosted backend.
type VenueRepo struct {
	client *Client
}

// NewVenueRepo creates a new VenueRepo.
func NewVenueRepo(client *Client) *VenueRepo {
	return &VenueRepo{client: client}
}

// venueRow is the backend's flat venue shape.
type venueRow struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	CityID      int64    `json:"city_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Rating      float64  `json:"overall_rating"`
	ReviewCount int      `json:"review_count"`

	PrayerFacilitiesRating   *float64 `json:"prayer_facilities_rating"`
	CleanlinessRating        *float64 `json:"cleanliness_rating"`
	HalalCertificationRating *float64 `json:"halal_certification_rating"`
	FoodQualityRating        *float64 `json:"food_quality_rating"`

	DistanceKm *float64  `json:"distance_km"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r venueRow) toDomain() domain.Venue {
	v := domain.Venue{
		ID:          strconv.FormatInt(r.ID, 10),
		Type:        domain.VenueType(r.Type),
		Name:        r.Name,
		Address:     r.Address,
		CityID:      strconv.FormatInt(r.CityID, 10),
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		DistanceKm:  r.DistanceKm,
		CreatedAt:   r.CreatedAt,
	}
	if r.Latitude != nil && r.Longitude != nil {
		v.Location = &domain.GeoPoint{Lat: *r.Latitude, Lon: *r.Longitude}
	}
	switch v.Type {
	case domain.VenueMosque:
		if r.PrayerFacilitiesRating != nil || r.CleanlinessRating != nil {
			v.Mosque = &domain.MosqueRatings{
				PrayerFacilities: deref(r.PrayerFacilitiesRating),
				Cleanliness:      deref(r.CleanlinessRating),
			}
		}
	case domain.VenueRestaurant:
		if r.HalalCertificationRating != nil || r.FoodQualityRating != nil {
			v.Restaurant = &domain.RestaurantRatings{
				HalalCertification: deref(r.HalalCertificationRating),
				FoodQuality:        deref(r.FoodQualityRating),
			}
		}
	}
	return v
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func toDomainVenues(rows []venueRow) []domain.Venue {
	venues := make([]domain.Venue, len(rows))
	for i, r := range rows {
		venues[i] = r.toDomain()
	}
	return venues
}

// ListByCity returns venues ordered by name, constrained by city and type
// when set. The search text is not forwarded: free-text matching is the
// caller's concern.
func (r *VenueRepo) ListByCity(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "name")
	if q.CityID != "" {
		query.Set("city_id", "eq."+q.CityID)
	}
	if q.Type.IsFilter() {
		query.Set("type", "eq."+string(q.Type))
	}

	var rows []venueRow
	if err := r.client.get(ctx, "venues", query, &rows); err != nil {
		return nil, err
	}
	return toDomainVenues(rows), nil
}

// GetByIDs resolves venues with an IN clause, ordered by name.
func (r *VenueRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "name")
	query.Set("id", "in.("+strings.Join(ids, ",")+")")

	var rows []venueRow
	if err := r.client.get(ctx, "venues", query, &rows); err != nil {
		return nil, err
	}
	return toDomainVenues(rows), nil
}

// FindWithinRadius calls the backend's geospatial function. The backend
// performs the radius bound and may return pre-annotated distances.
func (r *VenueRepo) FindWithinRadius(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error) {
	params := map[string]interface{}{
		"search_lat": q.Origin.Lat,
		"search_lng": q.Origin.Lon,
		"radius_km":  q.RadiusKm,
	}
	if q.Type.IsFilter() {
		params["venue_type"] = string(q.Type)
	} else {
		params["venue_type"] = nil
	}

	var rows []venueRow
	if err := r.client.rpc(ctx, "venues_within_radius", params, &rows); err != nil {
		return nil, err
	}
	return toDomainVenues(rows), nil
}
