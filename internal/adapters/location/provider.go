package location

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/pkg/metrics"
)

// Source supplies raw positioning: a permission grant followed by position
// fixes. Implementations wrap whatever actually knows where the user is,
// typically an HTTP gateway fronting the device.
type Source interface {
	// RequestPermission asks for location access. A denied grant returns a
	// LocationError with kind PermissionDenied.
	RequestPermission(ctx context.Context) error
	// Position returns the current coordinate.
	Position(ctx context.Context) (domain.GeoPoint, error)
}

const (
	defaultFixTimeout = 15 * time.Second
	defaultMaxFixAge  = 10 * time.Second
)

// Provider implements ports.LocationProvider on top of a Source. It asks
// for permission once, remembers a denial until Reset, and reuses a recent
// fix instead of hammering the source. It never retries on its own; a
// failed fix surfaces to the caller, who decides whether to try again.
type Provider struct {
	source     Source
	fixTimeout time.Duration
	maxFixAge  time.Duration

	mu        sync.Mutex
	granted   bool
	denied    error
	lastFix   domain.GeoPoint
	lastFixAt time.Time
}

// NewProvider creates a Provider. Zero durations select the defaults of
// 15s per fix and 10s fix reuse.
func NewProvider(source Source, fixTimeout, maxFixAge time.Duration) *Provider {
	if fixTimeout <= 0 {
		fixTimeout = defaultFixTimeout
	}
	if maxFixAge <= 0 {
		maxFixAge = defaultMaxFixAge
	}
	return &Provider{source: source, fixTimeout: fixTimeout, maxFixAge: maxFixAge}
}

// CurrentLocation returns a position fix, reusing one younger than the
// max fix age. Permission is requested lazily on first use; a denial
// sticks until Reset so the user is not re-prompted on every query.
func (p *Provider) CurrentLocation(ctx context.Context) (domain.GeoPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.denied != nil {
		return domain.GeoPoint{}, p.denied
	}
	if !p.lastFixAt.IsZero() && time.Since(p.lastFixAt) < p.maxFixAge {
		return p.lastFix, nil
	}

	if !p.granted {
		if err := p.source.RequestPermission(ctx); err != nil {
			lerr := asLocationError(err)
			if le, ok := domain.IsLocationError(lerr); ok && le.Kind == domain.LocationPermissionDenied {
				p.denied = lerr
			}
			return domain.GeoPoint{}, lerr
		}
		p.granted = true
	}

	fixCtx, cancel := context.WithTimeout(ctx, p.fixTimeout)
	defer cancel()

	fix, err := p.source.Position(fixCtx)
	if err != nil {
		if fixCtx.Err() == context.DeadlineExceeded {
			metrics.LocationFixes.WithLabelValues("timeout").Inc()
			return domain.GeoPoint{}, domain.NewLocationError(domain.LocationTimeout, err)
		}
		metrics.LocationFixes.WithLabelValues("error").Inc()
		return domain.GeoPoint{}, asLocationError(err)
	}

	metrics.LocationFixes.WithLabelValues("ok").Inc()
	p.lastFix = fix
	p.lastFixAt = time.Now()
	return fix, nil
}

// Reset clears a remembered denial and any cached fix, so the next call
// re-prompts. Used when the user explicitly re-enables location.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = nil
	p.granted = false
	p.lastFixAt = time.Time{}
}

// Unavailable returns a provider stand-in that fails every fix with an
// Unavailable error, for deployments without a location gateway. City
// browsing works as usual; only nearby-by-device is off.
func Unavailable() unavailableProvider {
	return unavailableProvider{}
}

type unavailableProvider struct{}

func (unavailableProvider) CurrentLocation(context.Context) (domain.GeoPoint, error) {
	return domain.GeoPoint{}, domain.NewLocationError(domain.LocationUnavailable, nil)
}

// asLocationError keeps LocationErrors intact and wraps anything else as
// Unknown, so callers always see the location taxonomy.
func asLocationError(err error) error {
	if _, ok := domain.IsLocationError(err); ok {
		return err
	}
	return domain.NewLocationError(domain.LocationUnknown, err)
}
