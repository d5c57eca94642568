package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/halalfinder/internal/adapters/http"
	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
)

// ---- Mock repositories ----

type mockCountryRepo struct {
	listFn func(ctx context.Context) ([]domain.Country, error)
}

func (m *mockCountryRepo) List(ctx context.Context) ([]domain.Country, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockCityRepo struct {
	listByCountryFn func(ctx context.Context, countryID string) ([]domain.City, error)
}

func (m *mockCityRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.City, error) {
	if m.listByCountryFn != nil {
		return m.listByCountryFn(ctx, countryID)
	}
	return nil, nil
}

type mockVenueRepo struct {
	listByCityFn       func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error)
	getByIDsFn         func(ctx context.Context, ids []string) ([]domain.Venue, error)
	findWithinRadiusFn func(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error)
}

func (m *mockVenueRepo) ListByCity(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
	if m.listByCityFn != nil {
		return m.listByCityFn(ctx, q)
	}
	return nil, nil
}
func (m *mockVenueRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Venue, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}
func (m *mockVenueRepo) FindWithinRadius(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error) {
	if m.findWithinRadiusFn != nil {
		return m.findWithinRadiusFn(ctx, q)
	}
	return nil, nil
}

type mockReviewRepo struct {
	listByVenueFn func(ctx context.Context, venueID string, limit int) ([]domain.Review, error)
	createFn      func(ctx context.Context, review *domain.Review) error
}

func (m *mockReviewRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
	if m.listByVenueFn != nil {
		return m.listByVenueFn(ctx, venueID, limit)
	}
	return nil, nil
}
func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	review.ID = "1"
	return nil
}

type mockLocation struct {
	fn func(ctx context.Context) (domain.GeoPoint, error)
}

func (m *mockLocation) CurrentLocation(ctx context.Context) (domain.GeoPoint, error) {
	if m.fn != nil {
		return m.fn(ctx)
	}
	return domain.GeoPoint{Lat: 59.33, Lon: 18.07}, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	venueSvc := usecases.NewVenueService(&mockVenueRepo{})
	nearbySvc := usecases.NewNearbyService(&mockVenueRepo{}, &mockLocation{})
	d := &handler.Dependencies{
		Countries: usecases.NewCountryService(&mockCountryRepo{}, nil),
		Cities:    usecases.NewCityService(&mockCityRepo{}, nil),
		Venues:    venueSvc,
		Nearby:    nearbySvc,
		Reviews:   usecases.NewReviewService(&mockReviewRepo{}, nil),
		Sessions:  usecases.NewSessionManager(venueSvc, nearbySvc, nil, nil),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Country and city handler tests ----

func TestListCountries_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Countries = usecases.NewCountryService(&mockCountryRepo{
			listFn: func(ctx context.Context) ([]domain.Country, error) {
				return []domain.Country{
					{ID: "1", Name: "Sweden", FlagEmoji: "🇸🇪", Status: "active"},
					{ID: "2", Name: "Norway", FlagEmoji: "🇳🇴", Status: "pending"},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/countries", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Country `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].Name != "Sweden" {
		t.Errorf("unexpected data: %+v", result.Data)
	}
}

func TestListCountries_Pagination(t *testing.T) {
	countries := make([]domain.Country, 5)
	for i := range countries {
		countries[i] = domain.Country{ID: fmt.Sprintf("%d", i), Name: fmt.Sprintf("Country %d", i)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Countries = usecases.NewCountryService(&mockCountryRepo{
			listFn: func(ctx context.Context) ([]domain.Country, error) { return countries, nil },
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/countries?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Country `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 || result.Pagination.Offset != 2 {
		t.Errorf("unexpected pagination: %+v", result.Pagination)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 countries in page, got %d", len(result.Data))
	}
}

func TestCountryCities_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&mockCityRepo{
			listByCountryFn: func(ctx context.Context, countryID string) ([]domain.City, error) {
				if countryID != "1" {
					t.Errorf("countryID = %q", countryID)
				}
				return []domain.City{
					{ID: "10", CountryID: "1", Name: "Gothenburg", MosqueCount: 3},
					{ID: "11", CountryID: "1", Name: "Stockholm", MosqueCount: 8, RestaurantCount: 12},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/countries/1/cities", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var cities []domain.City
	json.NewDecoder(resp.Body).Decode(&cities)
	if len(cities) != 2 {
		t.Errorf("expected 2 cities, got %d", len(cities))
	}
}

// ---- Venue handler tests ----

func TestListVenues_SearchFiltersClientSide(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Venues = usecases.NewVenueService(&mockVenueRepo{
			listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
				if q.CityID != "11" {
					t.Errorf("city_id = %q", q.CityID)
				}
				// The backend sees both venues; the term narrows afterwards.
				return []domain.Venue{
					{ID: "1", Type: domain.VenueMosque, Name: "Central Mosque", CityID: "11"},
					{ID: "2", Type: domain.VenueRestaurant, Name: "Babylon Grill", CityID: "11"},
				}, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues?city_id=11&q=mosque", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Venues []domain.Venue `json:"venues"`
		Count  int            `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 || result.Venues[0].Name != "Central Mosque" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestListVenues_MissingCity(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/venues", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListVenues_InvalidType(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/venues?city_id=1&type=bakery", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListVenues_BackendFailureIsBadGateway(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Venues = usecases.NewVenueService(&mockVenueRepo{
			listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
				return nil, domain.NewServerError(500, fmt.Errorf("backend exploded"))
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues?city_id=11", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 502 {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_gateway" {
		t.Errorf("expected bad_gateway, got %s", apiErr.Code)
	}
}

func TestBatchVenues_MissingIDs(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/venues/batch", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBatchVenues_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Venues = usecases.NewVenueService(&mockVenueRepo{
			getByIDsFn: func(ctx context.Context, ids []string) ([]domain.Venue, error) {
				if len(ids) != 2 {
					t.Errorf("ids = %v", ids)
				}
				// One of the requested ids no longer exists; it is
				// simply absent, never an error.
				return []domain.Venue{{ID: "7", Name: "Al Noor Mosque"}}, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues/batch?ids=7,999", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Count int `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 1 {
		t.Errorf("expected 1 venue, got %d", result.Count)
	}
}

func TestNearbyVenues_SortedByDistance(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Nearby = usecases.NewNearbyService(&mockVenueRepo{
			findWithinRadiusFn: func(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error) {
				return []domain.Venue{
					{ID: "far", Name: "Far", Location: &domain.GeoPoint{Lat: 59.40, Lon: 18.07}},
					{ID: "near", Name: "Near", Location: &domain.GeoPoint{Lat: 59.331, Lon: 18.07}},
				}, nil
			},
		}, &mockLocation{})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues/nearby?lat=59.33&lon=18.07&radius_km=10", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Venues []domain.Venue `json:"venues"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Venues) != 2 || result.Venues[0].ID != "near" {
		t.Errorf("not sorted by distance: %+v", result.Venues)
	}
	if result.Venues[0].DistanceKm == nil {
		t.Error("distance annotation missing")
	}
}

func TestNearbyVenues_BadRadius(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/venues/nearby?lat=59.33&lon=18.07&radius_km=500", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbyVenues_EmptyResultIsSuccess(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Nearby = usecases.NewNearbyService(&mockVenueRepo{
			findWithinRadiusFn: func(ctx context.Context, q domain.NearbyQuery) ([]domain.Venue, error) {
				return nil, nil
			},
		}, &mockLocation{})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues/nearby?lat=59.33&lon=18.07", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Venues []domain.Venue `json:"venues"`
		Count  int            `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count != 0 || result.Venues == nil {
		t.Errorf("expected empty array, got %+v", result)
	}
}

// ---- Review handler tests ----

func TestSubmitReview_Created(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Reviews = usecases.NewReviewService(&mockReviewRepo{
			createFn: func(ctx context.Context, review *domain.Review) error {
				review.ID = "42"
				return nil
			},
		}, nil)
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"user_name":"Amina","rating":5,"comment":"Spotless prayer hall"}`)
	req := httptest.NewRequest("POST", "/v1/venues/7/reviews", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var review domain.Review
	json.NewDecoder(resp.Body).Decode(&review)
	if review.ID != "42" || review.VenueID != "7" {
		t.Errorf("unexpected review: %+v", review)
	}
	if review.VisitDate == "" {
		t.Error("visit date not defaulted")
	}
}

func TestSubmitReview_InvalidRating(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"user_name":"Amina","rating":6,"comment":"Too good"}`)
	req := httptest.NewRequest("POST", "/v1/venues/7/reviews", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestVenueReviews_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Reviews = usecases.NewReviewService(&mockReviewRepo{
			listByVenueFn: func(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
				if venueID != "7" || limit != 5 {
					t.Errorf("venueID=%q limit=%d", venueID, limit)
				}
				return []domain.Review{{ID: "1", VenueID: "7", Rating: 4}}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/venues/7/reviews?limit=5", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// ---- Session handler tests ----

func TestSessionFlow(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		venueSvc := usecases.NewVenueService(&mockVenueRepo{
			listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
				return []domain.Venue{
					{ID: "1", Type: domain.VenueMosque, Name: "Central Mosque", CityID: q.CityID},
				}, nil
			},
		})
		d.Venues = venueSvc
		d.Sessions = usecases.NewSessionManager(venueSvc, d.Nearby, nil, nil)
	})
	app := setupApp(deps)

	// Create
	req := httptest.NewRequest("POST", "/v1/sessions", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var view struct {
		SessionID string         `json:"session_id"`
		Venues    []domain.Venue `json:"venues"`
		Favorites []string       `json:"favorites"`
	}
	json.NewDecoder(resp.Body).Decode(&view)
	if view.SessionID == "" {
		t.Fatal("no session id")
	}
	sid := view.SessionID

	// Select city: venue list populates
	body := strings.NewReader(`{"id":"11","name":"Stockholm"}`)
	req = httptest.NewRequest("PUT", "/v1/sessions/"+sid+"/city", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("select city: expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&view)
	if len(view.Venues) != 1 {
		t.Fatalf("expected 1 venue after city select, got %d", len(view.Venues))
	}

	// Toggle favorite twice: idempotent round trip
	req = httptest.NewRequest("POST", "/v1/sessions/"+sid+"/favorites/1/toggle", nil)
	resp, _ = app.Test(req, -1)
	var toggle struct {
		Favorited bool `json:"favorited"`
	}
	json.NewDecoder(resp.Body).Decode(&toggle)
	if !toggle.Favorited {
		t.Error("first toggle should favorite")
	}
	req = httptest.NewRequest("POST", "/v1/sessions/"+sid+"/favorites/1/toggle", nil)
	resp, _ = app.Test(req, -1)
	json.NewDecoder(resp.Body).Decode(&toggle)
	if toggle.Favorited {
		t.Error("second toggle should unfavorite")
	}

	// Snapshot reflects empty favorites again
	req = httptest.NewRequest("GET", "/v1/sessions/"+sid, nil)
	resp, _ = app.Test(req, -1)
	json.NewDecoder(resp.Body).Decode(&view)
	if len(view.Favorites) != 0 {
		t.Errorf("favorites not round-tripped: %v", view.Favorites)
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/v1/sessions/"+sid, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	req = httptest.NewRequest("GET", "/v1/sessions/"+sid, nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestSessionUnknownID_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	requests := []struct {
		method, path string
		body         string
	}{
		{"GET", "/v1/sessions/nope", ""},
		{"PUT", "/v1/sessions/nope/city", `{"id":"11","name":"Stockholm"}`},
		{"PUT", "/v1/sessions/nope/search", `{"q":"mosque"}`},
		{"PUT", "/v1/sessions/nope/filter", `{"type":"mosque"}`},
		{"POST", "/v1/sessions/nope/refresh", ""},
		{"POST", "/v1/sessions/nope/nearby", ""},
		{"POST", "/v1/sessions/nope/favorites/1/toggle", ""},
		{"GET", "/v1/sessions/nope/favorites", ""},
	}
	for _, r := range requests {
		var body io.Reader
		if r.body != "" {
			body = strings.NewReader(r.body)
		}
		req := httptest.NewRequest(r.method, r.path, body)
		if r.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s %s: %v", r.method, r.path, err)
		}
		if resp.StatusCode != 404 {
			t.Errorf("%s %s: expected 404, got %d", r.method, r.path, resp.StatusCode)
		}
	}
}

func TestSessionNearby_PermissionDeniedKeepsBrowsing(t *testing.T) {
	denied := &mockLocation{
		fn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.NewLocationError(domain.LocationPermissionDenied, nil)
		},
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		venueSvc := usecases.NewVenueService(&mockVenueRepo{
			listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
				return []domain.Venue{{ID: "1", Name: "Central Mosque"}}, nil
			},
		})
		d.Venues = venueSvc
		d.Nearby = usecases.NewNearbyService(&mockVenueRepo{}, denied)
		d.Sessions = usecases.NewSessionManager(venueSvc, d.Nearby, nil, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/sessions", nil)
	resp, _ := app.Test(req, -1)
	var view struct {
		SessionID string `json:"session_id"`
	}
	json.NewDecoder(resp.Body).Decode(&view)
	sid := view.SessionID

	body := strings.NewReader(`{"id":"11","name":"Stockholm"}`)
	req = httptest.NewRequest("PUT", "/v1/sessions/"+sid+"/city", body)
	req.Header.Set("Content-Type", "application/json")
	app.Test(req, -1)

	// Nearby fails with a permission error
	req = httptest.NewRequest("POST", "/v1/sessions/"+sid+"/nearby", nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// City-scoped browsing is untouched: list intact, no error state
	req = httptest.NewRequest("GET", "/v1/sessions/"+sid, nil)
	resp, _ = app.Test(req, -1)
	var snapshot struct {
		Venues []domain.Venue `json:"venues"`
		Error  string         `json:"error"`
	}
	json.NewDecoder(resp.Body).Decode(&snapshot)
	if len(snapshot.Venues) != 1 {
		t.Errorf("city venues lost after location failure: %+v", snapshot.Venues)
	}
	if snapshot.Error != "" {
		t.Errorf("location failure leaked into session error: %q", snapshot.Error)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
