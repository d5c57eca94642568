package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/core/ports"
)

// ViewState is the observable browsing state a UI consumes. Error and an
// empty venue list are distinct: Error set means the last query failed and
// its result was discarded.
type ViewState struct {
	SessionID  string           `json:"session_id"`
	Country    *domain.Country  `json:"country,omitempty"`
	City       *domain.City     `json:"city,omitempty"`
	SearchText string           `json:"search_text"`
	Filter     domain.VenueType `json:"filter"`
	Venues     []domain.Venue   `json:"venues"`
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
	Favorites  []string         `json:"favorites"`
}

// Session owns one user's browsing state: selection, search text, type
// filter, favorites, and the current venue list. Venue results are tagged
// with a generation counter so that only the most recently issued query
// may update visible state (last-request-wins); late results from
// superseded queries are dropped.
type Session struct {
	id        string
	userID    string
	venues    *VenueService
	nearby    *NearbyService
	favStore  ports.FavoriteStore
	publisher ports.EventPublisher

	mu         sync.Mutex
	gen        uint64
	country    *domain.Country
	city       *domain.City
	searchText string
	filter     domain.VenueType
	favorites  map[string]struct{}
	venueList  []domain.Venue
	loading    bool
	lastErr    error
}

// newSession is used by the SessionManager.
func newSession(id, userID string, venues *VenueService, nearby *NearbyService,
	favStore ports.FavoriteStore, publisher ports.EventPublisher) *Session {
	return &Session{
		id:        id,
		userID:    userID,
		venues:    venues,
		nearby:    nearby,
		favStore:  favStore,
		publisher: publisher,
		filter:    domain.VenueTypeAll,
		favorites: make(map[string]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SelectCountry sets the country and clears the city selection and venue
// list; venues are scoped to a city, so no query runs yet.
func (s *Session) SelectCountry(country domain.Country) ViewState {
	s.mu.Lock()
	s.country = &country
	s.city = nil
	s.venueList = nil
	s.lastErr = nil
	s.gen++ // supersede any in-flight venue query
	s.loading = false
	s.mu.Unlock()
	return s.snapshotAndBroadcast(context.Background())
}

// SelectCity sets the city and refetches venues for the current search
// text and filter.
func (s *Session) SelectCity(ctx context.Context, city domain.City) ViewState {
	s.mu.Lock()
	s.city = &city
	q, gen := s.beginQueryLocked()
	s.mu.Unlock()

	s.runQuery(ctx, gen, q)
	return s.snapshotAndBroadcast(ctx)
}

// SetSearchText updates the search text. The venue list is always
// refetched from the backend rather than re-filtered in place, so client
// and server filters cannot drift.
func (s *Session) SetSearchText(ctx context.Context, text string) ViewState {
	s.mu.Lock()
	s.searchText = text
	if s.city == nil {
		s.mu.Unlock()
		return s.snapshotAndBroadcast(ctx)
	}
	q, gen := s.beginQueryLocked()
	s.mu.Unlock()

	s.runQuery(ctx, gen, q)
	return s.snapshotAndBroadcast(ctx)
}

// SetFilter updates the venue type filter and refetches.
func (s *Session) SetFilter(ctx context.Context, t domain.VenueType) ViewState {
	s.mu.Lock()
	s.filter = t
	if s.city == nil {
		s.mu.Unlock()
		return s.snapshotAndBroadcast(ctx)
	}
	q, gen := s.beginQueryLocked()
	s.mu.Unlock()

	s.runQuery(ctx, gen, q)
	return s.snapshotAndBroadcast(ctx)
}

// Refresh re-runs the current query, e.g. for a user-initiated retry after
// an error.
func (s *Session) Refresh(ctx context.Context) ViewState {
	s.mu.Lock()
	if s.city == nil {
		s.mu.Unlock()
		return s.snapshotAndBroadcast(ctx)
	}
	q, gen := s.beginQueryLocked()
	s.mu.Unlock()

	s.runQuery(ctx, gen, q)
	return s.snapshotAndBroadcast(ctx)
}

// FindNearby replaces the venue list with a distance-sorted nearby result.
// On failure the existing list is left untouched and the error is
// returned: location problems must not break city-scoped browsing.
func (s *Session) FindNearby(ctx context.Context, radiusKm float64, venueType domain.VenueType) ([]domain.Venue, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	venues, err := s.nearby.FindNearby(ctx, radiusKm, venueType)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		slog.Debug("dropping stale nearby result", "session_id", s.id)
		return venues, err
	}
	s.loading = false
	if err == nil {
		s.lastErr = nil
		s.venueList = venues
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.broadcast(ctx)
	return venues, nil
}

// ToggleFavorite flips a venue's membership in the favorites set and
// reports the new state. The mutation is an idempotent set operation:
// toggling twice restores the original state. Server-side persistence is
// best-effort and never blocks the local toggle.
func (s *Session) ToggleFavorite(ctx context.Context, venueID string) bool {
	s.mu.Lock()
	_, present := s.favorites[venueID]
	if present {
		delete(s.favorites, venueID)
	} else {
		s.favorites[venueID] = struct{}{}
	}
	s.mu.Unlock()

	if s.favStore != nil && s.userID != "" {
		var err error
		if present {
			err = s.favStore.Remove(ctx, s.userID, venueID)
		} else {
			err = s.favStore.Add(ctx, s.userID, venueID)
		}
		if err != nil {
			slog.Warn("persist favorite", "venue_id", venueID, "error", err)
		}
	}

	s.broadcast(ctx)
	return !present
}

// IsFavorite reports membership in the favorites set.
func (s *Session) IsFavorite(venueID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[venueID]
	return ok
}

// FavoriteVenues resolves the favorites set to current venue records.
// Favorites referencing deleted venues are omitted, not errors.
func (s *Session) FavoriteVenues(ctx context.Context) ([]domain.Venue, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Strings(ids)
	return s.venues.QueryByIDs(ctx, ids)
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() ViewState {
	favorites := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		favorites = append(favorites, id)
	}
	sort.Strings(favorites)

	venues := make([]domain.Venue, len(s.venueList))
	copy(venues, s.venueList)

	vs := ViewState{
		SessionID:  s.id,
		Country:    s.country,
		City:       s.city,
		SearchText: s.searchText,
		Filter:     s.filter,
		Venues:     venues,
		Loading:    s.loading,
		Favorites:  favorites,
	}
	if s.lastErr != nil {
		vs.Error = s.lastErr.Error()
	}
	return vs
}

// beginQueryLocked bumps the generation and builds the query for the
// current selection. Callers hold s.mu.
func (s *Session) beginQueryLocked() (domain.VenueQuery, uint64) {
	s.gen++
	s.loading = true
	q := domain.VenueQuery{
		SearchText: s.searchText,
		Type:       s.filter,
	}
	if s.city != nil {
		q.CityID = s.city.ID
	}
	return q, s.gen
}

// runQuery executes a city query and applies the result only if no newer
// query has been issued since.
func (s *Session) runQuery(ctx context.Context, gen uint64, q domain.VenueQuery) {
	venues, err := s.venues.QueryByCity(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		slog.Debug("dropping stale query result", "session_id", s.id, "city_id", q.CityID)
		return
	}
	s.loading = false
	if err != nil {
		// An error replaces the view: distinct from an empty result.
		s.lastErr = err
		s.venueList = nil
		return
	}
	s.lastErr = nil
	s.venueList = venues
}

func (s *Session) snapshotAndBroadcast(ctx context.Context) ViewState {
	vs := s.Snapshot()
	if s.publisher != nil {
		if data, err := json.Marshal(vs); err == nil {
			_ = s.publisher.PublishSessionUpdate(ctx, s.id, data)
		}
	}
	return vs
}

func (s *Session) broadcast(ctx context.Context) {
	s.snapshotAndBroadcast(ctx)
}

// SessionManager creates and tracks sessions. Favorites are loaded from
// the store on creation when one is configured.
type SessionManager struct {
	venues    *VenueService
	nearby    *NearbyService
	favStore  ports.FavoriteStore
	publisher ports.EventPublisher

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(venues *VenueService, nearby *NearbyService,
	favStore ports.FavoriteStore, publisher ports.EventPublisher) *SessionManager {
	return &SessionManager{
		venues:    venues,
		nearby:    nearby,
		favStore:  favStore,
		publisher: publisher,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a session for a user. An empty userID gets an anonymous
// session with no persisted favorites.
func (m *SessionManager) Create(ctx context.Context, userID string) *Session {
	s := newSession(uuid.NewString(), userID, m.venues, m.nearby, m.favStore, m.publisher)

	if m.favStore != nil && userID != "" {
		ids, err := m.favStore.List(ctx, userID)
		if err != nil {
			slog.Warn("load favorites", "user_id", userID, "error", err)
		}
		for _, id := range ids {
			s.favorites[id] = struct{}{}
		}
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns a session by ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete removes a session.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
