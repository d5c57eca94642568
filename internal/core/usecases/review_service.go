package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
)

const maxCommentLen = 500

// ReviewService handles venue review reads and submissions.
type ReviewService struct {
	reviews   ports.ReviewRepository
	publisher ports.EventPublisher
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews ports.ReviewRepository, publisher ports.EventPublisher) *ReviewService {
	return &ReviewService{reviews: reviews, publisher: publisher}
}

// ListByVenue returns a venue's reviews, newest first.
func (s *ReviewService) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
	if venueID == "" {
		return nil, fmt.Errorf("venue id must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviews.ListByVenue(ctx, venueID, limit)
}

// Submit validates and persists a review. Submission is single-shot: a
// failure is returned for the user to retry explicitly, and nothing
// partial is persisted. New reviews are always unverified.
func (s *ReviewService) Submit(ctx context.Context, review *domain.Review) error {
	review.UserName = strings.TrimSpace(review.UserName)
	review.Comment = strings.TrimSpace(review.Comment)

	if review.VenueID == "" {
		return &domain.ValidationError{Field: "venue_id", Reason: "must not be empty"}
	}
	if review.UserName == "" {
		return &domain.ValidationError{Field: "user_name", Reason: "must not be empty"}
	}
	if review.Comment == "" {
		return &domain.ValidationError{Field: "comment", Reason: "must not be empty"}
	}
	if len(review.Comment) > maxCommentLen {
		return &domain.ValidationError{Field: "comment", Reason: fmt.Sprintf("must be at most %d characters", maxCommentLen)}
	}
	if review.Rating < 1 || review.Rating > 5 {
		return &domain.ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	if review.VisitDate == "" {
		review.VisitDate = time.Now().Format("2006-01-02")
	}
	review.IsVerified = false

	if err := s.reviews.Create(ctx, review); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReviewCreated(ctx, review); err != nil {
			slog.Warn("publish review event", "venue_id", review.VenueID, "error", err)
		}
	}
	return nil
}
