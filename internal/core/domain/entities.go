package domain

import (
	"strings"
	"time"
)

// VenueType discriminates the two venue variants.
type VenueType string

const (
	VenueMosque     VenueType = "mosque"
	VenueRestaurant VenueType = "restaurant"

	// VenueTypeAll is the sentinel meaning "no server-side type filter".
	VenueTypeAll VenueType = "all"
)

// IsFilter reports whether the type constrains a query. Empty and "all"
// both mean unfiltered.
func (t VenueType) IsFilter() bool {
	return t != "" && t != VenueTypeAll
}

// Country is a top-level browsing entry.
type Country struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FlagEmoji  string    `json:"flag_emoji"`
	Status     string    `json:"status"` // "active" or "pending"
	CityCount  int       `json:"city_count"`
	VenueCount int       `json:"venue_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// City groups venues inside a country.
type City struct {
	ID              string    `json:"id"`
	CountryID       string    `json:"country_id"`
	Name            string    `json:"name"`
	MosqueCount     int       `json:"mosque_count"`
	RestaurantCount int       `json:"restaurant_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// MosqueRatings are the category ratings specific to mosques.
type MosqueRatings struct {
	PrayerFacilities float64 `json:"prayer_facilities_rating"`
	Cleanliness      float64 `json:"cleanliness_rating"`
}

// RestaurantRatings are the category ratings specific to restaurants.
type RestaurantRatings struct {
	HalalCertification float64 `json:"halal_certification_rating"`
	FoodQuality        float64 `json:"food_quality_rating"`
}

// Venue is a mosque or halal restaurant record. Exactly one of the two
// variant rating blocks may be set, matching Type.
type Venue struct {
	ID          string    `json:"id"`
	Type        VenueType `json:"type"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	CityID      string    `json:"city_id"`
	Location    *GeoPoint `json:"location,omitempty"` // some venues have no coordinates
	Rating      float64   `json:"overall_rating"`     // aggregate, 0.0-5.0
	ReviewCount int       `json:"review_count"`

	Mosque     *MosqueRatings     `json:"mosque_ratings,omitempty"`
	Restaurant *RestaurantRatings `json:"restaurant_ratings,omitempty"`

	// DistanceKm is computed per query, never persisted. Nil unless the
	// venue was returned by a nearby search or annotated against a known
	// user location.
	DistanceKm *float64 `json:"distance_km,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MatchesSearch reports whether the venue's name or address contains the
// term, case-insensitively. An empty term matches everything.
func (v *Venue) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(v.Name), term) ||
		strings.Contains(strings.ToLower(v.Address), term)
}

// VenueQuery is one user-issued filter intent for city-scoped listing.
// SearchText is matched client-side after the response; it is never sent
// to the backend as a filter term.
type VenueQuery struct {
	CityID     string    `json:"city_id,omitempty"` // empty spans all cities
	SearchText string    `json:"search_text,omitempty"`
	Type       VenueType `json:"type,omitempty"`
}

// NearbyQuery is a radius-bounded venue search centered on a coordinate.
// The backend performs the radius filtering; it is the source of truth for
// the boundary.
type NearbyQuery struct {
	Origin   GeoPoint  `json:"origin"`
	RadiusKm float64   `json:"radius_km"`
	Type     VenueType `json:"type,omitempty"`
}

// Review is a user-submitted venue review.
type Review struct {
	ID         string    `json:"id"`
	VenueID    string    `json:"venue_id"`
	UserName   string    `json:"user_name"`
	Rating     int       `json:"rating"` // 1-5
	Comment    string    `json:"comment"`
	VisitDate  string    `json:"visit_date"` // YYYY-MM-DD
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
