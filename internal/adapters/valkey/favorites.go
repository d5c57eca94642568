package valkey

import (
	"context"
)

// FavoriteStore implements ports.FavoriteStore on Valkey sets. Set
// semantics make Add and Remove idempotent for free: re-adding a member or
// removing an absent one is a no-op.
type FavoriteStore struct {
	cache *Cache
}

// NewFavoriteStore creates a FavoriteStore sharing the cache's client.
func NewFavoriteStore(cache *Cache) *FavoriteStore {
	return &FavoriteStore{cache: cache}
}

func favoritesKey(userID string) string {
	return "favorites:" + userID
}

// List returns the user's favorited venue ids, unordered.
func (s *FavoriteStore) List(ctx context.Context, userID string) ([]string, error) {
	c := s.cache.client
	cmd := c.Do(ctx, c.B().Smembers().Key(favoritesKey(userID)).Build())
	if cmd.Error() != nil {
		return nil, cmd.Error()
	}
	return cmd.AsStrSlice()
}

// Add marks a venue as a favorite.
func (s *FavoriteStore) Add(ctx context.Context, userID, venueID string) error {
	c := s.cache.client
	return c.Do(ctx, c.B().Sadd().Key(favoritesKey(userID)).Member(venueID).Build()).Error()
}

// Remove unmarks a venue.
func (s *FavoriteStore) Remove(ctx context.Context, userID, venueID string) error {
	c := s.cache.client
	return c.Do(ctx, c.B().Srem().Key(favoritesKey(userID)).Member(venueID).Build()).Error()
}
