package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

type fakeSource struct {
	permissionFn func(ctx context.Context) error
	positionFn   func(ctx context.Context) (domain.GeoPoint, error)

	permissionCalls int
	positionCalls   int
}

func (f *fakeSource) RequestPermission(ctx context.Context) error {
	f.permissionCalls++
	if f.permissionFn != nil {
		return f.permissionFn(ctx)
	}
	return nil
}

func (f *fakeSource) Position(ctx context.Context) (domain.GeoPoint, error) {
	f.positionCalls++
	if f.positionFn != nil {
		return f.positionFn(ctx)
	}
	return domain.GeoPoint{Lat: 59.33, Lon: 18.07}, nil
}

func TestCurrentLocationHappyPath(t *testing.T) {
	src := &fakeSource{}
	p := NewProvider(src, 0, 0)

	fix, err := p.CurrentLocation(context.Background())
	if err != nil {
		t.Fatalf("CurrentLocation: %v", err)
	}
	if fix.Lat != 59.33 || fix.Lon != 18.07 {
		t.Errorf("fix = %+v", fix)
	}
	if src.permissionCalls != 1 {
		t.Errorf("permission calls = %d, want 1", src.permissionCalls)
	}
}

func TestPermissionAskedOnce(t *testing.T) {
	src := &fakeSource{}
	p := NewProvider(src, 0, time.Nanosecond) // force fresh fixes

	for i := 0; i < 3; i++ {
		if _, err := p.CurrentLocation(context.Background()); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if src.permissionCalls != 1 {
		t.Errorf("permission calls = %d, want 1", src.permissionCalls)
	}
	if src.positionCalls != 3 {
		t.Errorf("position calls = %d, want 3", src.positionCalls)
	}
}

func TestDenialSticksUntilReset(t *testing.T) {
	src := &fakeSource{
		permissionFn: func(ctx context.Context) error {
			return domain.NewLocationError(domain.LocationPermissionDenied, nil)
		},
	}
	p := NewProvider(src, 0, 0)

	for i := 0; i < 2; i++ {
		_, err := p.CurrentLocation(context.Background())
		le, ok := domain.IsLocationError(err)
		if !ok || le.Kind != domain.LocationPermissionDenied {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}
	if src.permissionCalls != 1 {
		t.Errorf("permission calls = %d, want 1 (denial should be remembered)", src.permissionCalls)
	}
	if src.positionCalls != 0 {
		t.Errorf("position calls = %d, want 0", src.positionCalls)
	}

	src.permissionFn = nil
	p.Reset()
	if _, err := p.CurrentLocation(context.Background()); err != nil {
		t.Fatalf("after reset: %v", err)
	}
	if src.permissionCalls != 2 {
		t.Errorf("permission calls after reset = %d, want 2", src.permissionCalls)
	}
}

func TestFixReusedWithinMaxAge(t *testing.T) {
	src := &fakeSource{}
	p := NewProvider(src, 0, time.Minute)

	if _, err := p.CurrentLocation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := p.CurrentLocation(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.positionCalls != 1 {
		t.Errorf("position calls = %d, want 1 (second call should reuse the fix)", src.positionCalls)
	}
}

func TestSlowFixBecomesTimeout(t *testing.T) {
	src := &fakeSource{
		positionFn: func(ctx context.Context) (domain.GeoPoint, error) {
			<-ctx.Done()
			return domain.GeoPoint{}, ctx.Err()
		},
	}
	p := NewProvider(src, 10*time.Millisecond, 0)

	_, err := p.CurrentLocation(context.Background())
	le, ok := domain.IsLocationError(err)
	if !ok || le.Kind != domain.LocationTimeout {
		t.Fatalf("error = %v, want timeout", err)
	}
}

func TestUnclassifiedErrorBecomesUnknown(t *testing.T) {
	src := &fakeSource{
		positionFn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, errors.New("gps hardware fault")
		},
	}
	p := NewProvider(src, 0, 0)

	_, err := p.CurrentLocation(context.Background())
	le, ok := domain.IsLocationError(err)
	if !ok || le.Kind != domain.LocationUnknown {
		t.Fatalf("error = %v, want unknown", err)
	}
}

func TestFailedFixNotRetried(t *testing.T) {
	src := &fakeSource{
		positionFn: func(ctx context.Context) (domain.GeoPoint, error) {
			return domain.GeoPoint{}, domain.NewLocationError(domain.LocationUnavailable, nil)
		},
	}
	p := NewProvider(src, 0, 0)

	if _, err := p.CurrentLocation(context.Background()); err == nil {
		t.Fatal("want error")
	}
	if src.positionCalls != 1 {
		t.Errorf("position calls = %d, want 1 (no automatic retry)", src.positionCalls)
	}
}
