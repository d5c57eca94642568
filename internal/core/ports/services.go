package ports

import (
	"context"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// LocationProvider produces a single device coordinate fix. It never
// retries; the caller decides whether to re-invoke. Failures carry the
// domain.LocationError taxonomy.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (domain.GeoPoint, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
