package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// ReviewRepo implements ports.ReviewRepository against the hosted backend.
type ReviewRepo struct {
	client *Client
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(client *Client) *ReviewRepo {
	return &ReviewRepo{client: client}
}

type reviewRow struct {
	ID         int64     `json:"id,omitempty"`
	VenueID    int64     `json:"venue_id"`
	UserName   string    `json:"user_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	VisitDate  string    `json:"visit_date"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:         strconv.FormatInt(r.ID, 10),
		VenueID:    strconv.FormatInt(r.VenueID, 10),
		UserName:   r.UserName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		VisitDate:  r.VisitDate,
		IsVerified: r.IsVerified,
		CreatedAt:  r.CreatedAt,
	}
}

// ListByVenue returns the newest reviews first, capped at limit.
func (r *ReviewRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")
	query.Set("venue_id", "eq."+venueID)
	query.Set("limit", strconv.Itoa(limit))

	var rows []reviewRow
	if err := r.client.get(ctx, "reviews", query, &rows); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.toDomain()
	}
	return reviews, nil
}

// Create inserts a review and fills the backend-assigned ID and timestamp.
func (r *ReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	venueID, err := strconv.ParseInt(review.VenueID, 10, 64)
	if err != nil {
		return &domain.ValidationError{Field: "venue_id", Reason: "must be numeric"}
	}

	row := reviewRow{
		VenueID:    venueID,
		UserName:   review.UserName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		VisitDate:  review.VisitDate,
		IsVerified: review.IsVerified,
	}

	// With return=representation the backend answers with an array
	// holding the inserted row.
	var created []reviewRow
	if err := r.client.insert(ctx, "reviews", row, &created); err != nil {
		return err
	}
	if len(created) == 0 {
		return domain.NewServerError(0, fmt.Errorf("insert returned no representation"))
	}

	got := created[0].toDomain()
	review.ID = got.ID
	review.CreatedAt = got.CreatedAt
	return nil
}
