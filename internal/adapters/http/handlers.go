package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/pkg/metrics"
)

// CatalogStats holds row counts from the venue catalog tables.
type CatalogStats struct {
	Countries int    `json:"countries"`
	Cities    int    `json:"cities"`
	Venues    int    `json:"venues"`
	Reviews   int    `json:"reviews"`
	LastSeed  string `json:"last_seed,omitempty"`
}

// CatalogStatsHandler returns row counts from the catalog tables. Only
// available when running against a local database.
func CatalogStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM countries),
				(SELECT count(*) FROM cities),
				(SELECT count(*) FROM venues),
				(SELECT count(*) FROM reviews),
				COALESCE((SELECT max(created_at)::text FROM venues), '')
		`)
		if err := row.Scan(&stats.Countries, &stats.Cities, &stats.Venues,
			&stats.Reviews, &stats.LastSeed); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListCountriesHandler returns all browsable countries ordered by id.
func ListCountriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := deps.Countries.List(c.Context())
		if err != nil {
			return errDomain(c, err)
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(countries)
		if offset >= total {
			countries = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			countries = countries[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: countries, Pagination: pg})
	}
}

// CountryCitiesHandler returns a country's cities ordered by name.
func CountryCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "country id is required")
		}
		cities, err := deps.Cities.ListByCountry(c.Context(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(cities)
	}
}

// parseVenueType validates an optional type query parameter.
func parseVenueType(raw string) (domain.VenueType, bool) {
	switch domain.VenueType(raw) {
	case "", domain.VenueTypeAll, domain.VenueMosque, domain.VenueRestaurant:
		return domain.VenueType(raw), true
	}
	return "", false
}

// ListVenuesHandler returns a city's venues, optionally narrowed by a
// free-text term and a type filter. The term is matched against name and
// address after the backend responds; the backend only sees city and type.
func ListVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cityID := c.Query("city_id")
		if cityID == "" {
			return errBadRequest(c, "city_id query parameter is required")
		}
		q := c.Query("q")
		if len(q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		venueType, ok := parseVenueType(c.Query("type"))
		if !ok {
			return errBadRequest(c, "type must be mosque, restaurant, or all")
		}

		venues, err := deps.Venues.QueryByCity(c.Context(), domain.VenueQuery{
			CityID:     cityID,
			SearchText: q,
			Type:       venueType,
		})
		if err != nil {
			metrics.VenueQueryErrors.Inc()
			return errDomain(c, err)
		}

		metrics.VenueQueries.Inc()
		return c.JSON(venueListResponse(venues))
	}
}

// BatchVenuesHandler returns multiple venues by ID. Unknown ids are
// silently dropped from the result.
func BatchVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("ids", "")
		if raw == "" {
			return errBadRequest(c, "ids query parameter is required (comma-separated)")
		}

		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		if len(ids) == 0 {
			return errBadRequest(c, "at least one venue ID is required")
		}
		if len(ids) > 100 {
			return errBadRequest(c, "maximum 100 venue IDs allowed")
		}

		venues, err := deps.Venues.QueryByIDs(c.Context(), ids)
		if err != nil {
			return errDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(venueListResponse(venues))
	}
}

// NearbyVenuesHandler returns venues within a radius of a coordinate,
// sorted by distance. The radius boundary is enforced by the backend.
func NearbyVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius_km", 10)

		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat and lon must be valid coordinates")
		}
		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 100 {
			return errBadRequest(c, "radius_km must be between 0 and 100")
		}
		venueType, ok := parseVenueType(c.Query("type"))
		if !ok {
			return errBadRequest(c, "type must be mosque, restaurant, or all")
		}

		venues, err := deps.Nearby.FindNearbyAt(c.Context(),
			domain.GeoPoint{Lat: lat, Lon: lon}, radius, venueType)
		if err != nil {
			metrics.NearbySearches.WithLabelValues("error").Inc()
			return errDomain(c, err)
		}

		metrics.NearbySearches.WithLabelValues("ok").Inc()
		return c.JSON(venueListResponse(venues))
	}
}

// VenueReviewsHandler returns a venue's newest reviews.
func VenueReviewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "venue id is required")
		}
		limit := c.QueryInt("limit", 20)

		reviews, err := deps.Reviews.ListByVenue(c.Context(), id, limit)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"reviews": reviews,
			"count":   len(reviews),
		})
	}
}

// submitReviewRequest is the POST body for review submission.
type submitReviewRequest struct {
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	VisitDate string `json:"visit_date"`
}

// SubmitReviewHandler creates a review for a venue.
func SubmitReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "venue id is required")
		}

		var req submitReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		review := domain.Review{
			VenueID:   id,
			UserName:  req.UserName,
			Rating:    req.Rating,
			Comment:   req.Comment,
			VisitDate: req.VisitDate,
		}
		if err := deps.Reviews.Submit(c.Context(), &review); err != nil {
			return errDomain(c, err)
		}

		metrics.ReviewsSubmitted.Inc()
		return c.Status(fiber.StatusCreated).JSON(review)
	}
}

// venueListResponse wraps a venue list with its count, keeping an empty
// result distinguishable as a deliberate empty array.
func venueListResponse(venues []domain.Venue) fiber.Map {
	if venues == nil {
		venues = []domain.Venue{}
	}
	return fiber.Map{
		"venues": venues,
		"count":  len(venues),
	}
}
