package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
)

// --- Mock ReviewRepository ---

type mockReviewRepo struct {
	listFn   func(ctx context.Context, venueID string, limit int) ([]domain.Review, error)
	createFn func(ctx context.Context, review *domain.Review) error
}

func (m *mockReviewRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
	if m.listFn != nil {
		return m.listFn(ctx, venueID, limit)
	}
	return nil, nil
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, review)
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	reviews  []*domain.Review
	sessions int
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *mockPublisher) PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error {
	m.sessions++
	return nil
}

// --- Tests ---

func TestReviewService_Submit_Valid(t *testing.T) {
	var created *domain.Review
	repo := &mockReviewRepo{
		createFn: func(ctx context.Context, r *domain.Review) error {
			created = r
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewReviewService(repo, pub)

	err := svc.Submit(context.Background(), &domain.Review{
		VenueID:  "v1",
		UserName: "  Ahmed K. ",
		Rating:   5,
		Comment:  "Spacious prayer hall, very clean.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("review was not persisted")
	}
	if created.UserName != "Ahmed K." {
		t.Errorf("user name not trimmed: %q", created.UserName)
	}
	if created.VisitDate == "" {
		t.Error("visit date should default to today")
	}
	if created.IsVerified {
		t.Error("new reviews must be unverified")
	}
	if len(pub.reviews) != 1 {
		t.Errorf("expected 1 published event, got %d", len(pub.reviews))
	}
}

func TestReviewService_Submit_Validation(t *testing.T) {
	svc := usecases.NewReviewService(&mockReviewRepo{}, nil)

	cases := []struct {
		name   string
		review domain.Review
		field  string
	}{
		{"missing venue", domain.Review{UserName: "A", Rating: 3, Comment: "ok"}, "venue_id"},
		{"blank name", domain.Review{VenueID: "v1", UserName: "   ", Rating: 3, Comment: "ok"}, "user_name"},
		{"blank comment", domain.Review{VenueID: "v1", UserName: "A", Rating: 3, Comment: " "}, "comment"},
		{"rating too low", domain.Review{VenueID: "v1", UserName: "A", Rating: 0, Comment: "ok"}, "rating"},
		{"rating too high", domain.Review{VenueID: "v1", UserName: "A", Rating: 6, Comment: "ok"}, "rating"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Submit(context.Background(), &tc.review)
			ve, ok := domain.IsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestReviewService_Submit_LongComment(t *testing.T) {
	svc := usecases.NewReviewService(&mockReviewRepo{}, nil)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	err := svc.Submit(context.Background(), &domain.Review{
		VenueID: "v1", UserName: "A", Rating: 4, Comment: string(long),
	})
	if _, ok := domain.IsValidationError(err); !ok {
		t.Fatalf("expected validation error for 501-char comment, got %v", err)
	}
}

func TestReviewService_Submit_RepoFailureSurfaces(t *testing.T) {
	repo := &mockReviewRepo{
		createFn: func(ctx context.Context, r *domain.Review) error {
			return domain.NewServerError(500, errors.New("insert failed"))
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewReviewService(repo, pub)

	err := svc.Submit(context.Background(), &domain.Review{
		VenueID: "v1", UserName: "A", Rating: 4, Comment: "ok",
	})
	if err == nil {
		t.Fatal("expected error for the user to retry")
	}
	if len(pub.reviews) != 0 {
		t.Error("no event should be published for a failed submission")
	}
}

func TestReviewService_ListByVenue_ClampsLimit(t *testing.T) {
	repo := &mockReviewRepo{
		listFn: func(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
			if limit != 20 {
				t.Errorf("expected limit clamped to 20, got %d", limit)
			}
			return nil, nil
		},
	}
	svc := usecases.NewReviewService(repo, nil)
	_, _ = svc.ListByVenue(context.Background(), "v1", 0)
	_, _ = svc.ListByVenue(context.Background(), "v1", 999)
}
