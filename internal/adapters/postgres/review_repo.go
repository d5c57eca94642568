package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// ReviewRepo implements ports.ReviewRepository with pgx.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// ListByVenue returns the newest reviews first, capped at limit.
func (r *ReviewRepo) ListByVenue(ctx context.Context, venueID string, limit int) ([]domain.Review, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, venue_id, user_name, rating, COALESCE(comment, ''),
		       to_char(visit_date, 'YYYY-MM-DD'), is_verified, created_at
		FROM reviews
		WHERE venue_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, venueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		var id, venue int64
		if err := rows.Scan(&id, &venue, &rv.UserName, &rv.Rating,
			&rv.Comment, &rv.VisitDate, &rv.IsVerified, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.ID = strconv.FormatInt(id, 10)
		rv.VenueID = strconv.FormatInt(venue, 10)
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// Create inserts a review and refreshes the venue's aggregate rating and
// review count in the same transaction.
func (r *ReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (venue_id, user_name, rating, comment, visit_date, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, review.VenueID, review.UserName, review.Rating,
		review.Comment, review.VisitDate, review.IsVerified).
		Scan(&id, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	review.ID = strconv.FormatInt(id, 10)

	_, err = tx.Exec(ctx, `
		UPDATE venues SET
			overall_rating = (SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE venue_id = $1),
			review_count = (SELECT COUNT(*) FROM reviews WHERE venue_id = $1)
		WHERE id = $1
	`, review.VenueID)
	if err != nil {
		return fmt.Errorf("refresh venue aggregates: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkVerified flags a review as verified. Used by the review worker after
// its moderation checks pass.
func (r *ReviewRepo) MarkVerified(ctx context.Context, reviewID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reviews SET is_verified = TRUE WHERE id = $1`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", reviewID)
	}
	return nil
}
