package usecases_test

import (
	"context"
	"testing"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
)

// --- Mock VenueRepository ---

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

// --- Tests ---

func TestVenueService_QueryByCity_SearchFiltersNameAndAddress(t *testing.T) {
	repo := &mockVenueRepo{
		listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
			return []domain.Venue{
				{ID: "1", Name: "Babylon Restaurant", Address: "12 High Street"},
				{ID: "2", Name: "Central Mosque", Address: "3 Park Lane"},
				{ID: "3", Name: "Kebab House", Address: "Old Mosque Road 7"},
			}, nil
		},
	}

	svc := usecases.NewVenueService(repo)
	venues, err := svc.QueryByCity(context.Background(), domain.VenueQuery{
		CityID:     "c1",
		SearchText: "MOSQUE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(venues))
	}
	if venues[0].ID != "2" || venues[1].ID != "3" {
		t.Errorf("expected IDs 2 and 3 in backend order, got %s and %s", venues[0].ID, venues[1].ID)
	}
	for _, v := range venues {
		if v.Name == "Babylon Restaurant" {
			t.Error("venue matching neither name nor address leaked through the search filter")
		}
	}
}

func TestVenueService_QueryByCity_EmptySearchKeepsBackendOrder(t *testing.T) {
	backendOrder := []domain.Venue{
		{ID: "b", Name: "Al-Noor Mosque"},
		{ID: "a", Name: "Zam Zam Grill"},
	}
	repo := &mockVenueRepo{
		listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
			return backendOrder, nil
		},
	}

	svc := usecases.NewVenueService(repo)
	venues, err := svc.QueryByCity(context.Background(), domain.VenueQuery{CityID: "c1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 2 || venues[0].ID != "b" || venues[1].ID != "a" {
		t.Error("client must not reorder backend results")
	}
}

func TestVenueService_QueryByCity_AllEqualsUnfiltered(t *testing.T) {
	var gotTypes []domain.VenueType
	repo := &mockVenueRepo{
		listByCityFn: func(ctx context.Context, q domain.VenueQuery) ([]domain.Venue, error) {
			gotTypes = append(gotTypes, q.Type)
			return []domain.Venue{
				{ID: "1", Type: domain.VenueMosque},
				{ID: "2", Type: domain.VenueRestaurant},
			}, nil
		},
	}

	svc := usecases.NewVenueService(repo)
	all, _ := svc.QueryByCity(context.Background(), domain.VenueQuery{CityID: "c1", Type: domain.VenueTypeAll})
	unfiltered, _ := svc.QueryByCity(context.Background(), domain.VenueQuery{CityID: "c1"})

	if len(all) != len(unfiltered) {
		t.Errorf("'all' filter returned %d venues, unfiltered returned %d", len(all), len(unfiltered))
	}
	for _, typ := range gotTypes {
		if typ.IsFilter() {
			t.Errorf("type %q should not be treated as a server-side filter", typ)
		}
	}
}

func TestVenueService_QueryByIDs_EmptyShortCircuits(t *testing.T) {
	called := false
	repo := &mockVenueRepo{
		getByIDsFn: func(ctx context.Context, ids []string) ([]domain.Venue, error) {
			called = true
			return nil, nil
		},
	}

	svc := usecases.NewVenueService(repo)
	venues, err := svc.QueryByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 0 {
		t.Errorf("expected empty result, got %d venues", len(venues))
	}
	if called {
		t.Error("empty ID set must not issue a request")
	}
}

func TestVenueService_QueryByIDs_Dedupes(t *testing.T) {
	repo := &mockVenueRepo{
		getByIDsFn: func(ctx context.Context, ids []string) ([]domain.Venue, error) {
			if len(ids) != 2 {
				t.Errorf("expected 2 unique ids, got %v", ids)
			}
			return []domain.Venue{{ID: "1"}}, nil
		},
	}

	svc := usecases.NewVenueService(repo)
	// "2" resolves to nothing (deleted venue): silently absent, not an error.
	venues, err := svc.QueryByIDs(context.Background(), []string{"1", "2", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(venues) != 1 {
		t.Errorf("expected 1 venue, got %d", len(venues))
	}
}
