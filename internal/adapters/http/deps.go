package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/halalfinder/internal/adapters/postgres"
	"github.com/samirrijal/halalfinder/internal/adapters/valkey"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. DB is nil when
// the hosted REST backend is the configured driver.
type Dependencies struct {
	Countries *usecases.CountryService
	Cities    *usecases.CityService
	Venues    *usecases.VenueService
	Nearby    *usecases.NearbyService
	Reviews   *usecases.ReviewService
	Sessions  *usecases.SessionManager
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
