package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
	"github.com/samirrijal/halalfinder/internal/pkg/metrics"
)

// Session endpoints expose the stateful browsing flow: a client creates a
// session, mutates its selection/search/filter, and observes the resulting
// view state either from the mutation response or over the WebSocket relay.

// sessionFromParams resolves the :id route param to a live session. On a
// missing or unknown id it writes the error response itself and returns a
// nil session; callers must check the session, not the error, which only
// reports a failed response write.
func sessionFromParams(c *fiber.Ctx, deps *Dependencies) (*usecases.Session, error) {
	id := c.Params("id")
	if id == "" {
		return nil, errBadRequest(c, "session id is required")
	}
	s := deps.Sessions.Get(id)
	if s == nil {
		return nil, errNotFound(c, "session not found")
	}
	return s, nil
}

// CreateSessionHandler starts a browsing session. An empty user_id gives
// an anonymous session whose favorites are not persisted.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid JSON body")
			}
		}

		s := deps.Sessions.Create(c.Context(), req.UserID)
		metrics.ActiveSessions.Inc()
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	}
}

// GetSessionHandler returns the session's current view state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		return c.JSON(s.Snapshot())
	}
}

// DeleteSessionHandler ends a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "session id is required")
		}
		if deps.Sessions.Get(id) == nil {
			return errNotFound(c, "session not found")
		}
		deps.Sessions.Delete(id)
		metrics.ActiveSessions.Dec()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectCountryHandler sets the session's country. The city selection and
// venue list are cleared; venues are city-scoped.
func SelectCountryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		var country domain.Country
		if err := c.BodyParser(&country); err != nil || country.ID == "" {
			return errBadRequest(c, "country with id is required")
		}
		return c.JSON(s.SelectCountry(country))
	}
}

// SelectCityHandler sets the session's city and fetches its venues.
func SelectCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		var city domain.City
		if err := c.BodyParser(&city); err != nil || city.ID == "" {
			return errBadRequest(c, "city with id is required")
		}
		return c.JSON(s.SelectCity(c.Context(), city))
	}
}

// SetSearchHandler updates the free-text search term.
func SetSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		var req struct {
			Q string `json:"q"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Q) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		return c.JSON(s.SetSearchText(c.Context(), req.Q))
	}
}

// SetFilterHandler updates the venue type filter.
func SetFilterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		var req struct {
			Type string `json:"type"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		venueType, ok := parseVenueType(req.Type)
		if !ok {
			return errBadRequest(c, "type must be mosque, restaurant, or all")
		}
		return c.JSON(s.SetFilter(c.Context(), venueType))
	}
}

// RefreshSessionHandler re-runs the current query, the user-initiated
// retry path after an error state.
func RefreshSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		return c.JSON(s.Refresh(c.Context()))
	}
}

// SessionNearbyHandler runs a device-located nearby search inside the
// session. A location failure leaves the city-scoped view intact and is
// reported on its own, never through the session's error state.
func SessionNearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		var req struct {
			RadiusKm float64 `json:"radius_km"`
			Type     string  `json:"type"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid JSON body")
			}
		}
		venueType, ok := parseVenueType(req.Type)
		if !ok {
			return errBadRequest(c, "type must be mosque, restaurant, or all")
		}

		venues, err := s.FindNearby(c.Context(), req.RadiusKm, venueType)
		if err != nil {
			metrics.NearbySearches.WithLabelValues("error").Inc()
			return errDomain(c, err)
		}
		metrics.NearbySearches.WithLabelValues("ok").Inc()
		return c.JSON(venueListResponse(venues))
	}
}

// ToggleFavoriteHandler flips a venue in the session's favorites set.
func ToggleFavoriteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		venueID := c.Params("venueID")
		if venueID == "" {
			return errBadRequest(c, "venue id is required")
		}
		favorited := s.ToggleFavorite(c.Context(), venueID)
		return c.JSON(fiber.Map{
			"venue_id":  venueID,
			"favorited": favorited,
		})
	}
}

// FavoriteVenuesHandler resolves the session's favorites to venue records.
// Favorites pointing at deleted venues are simply absent from the result.
func FavoriteVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := sessionFromParams(c, deps)
		if s == nil {
			return err
		}
		venues, err := s.FavoriteVenues(c.Context())
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(venueListResponse(venues))
	}
}
