package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

// Gateway is a Source backed by a device-location HTTP gateway. The gateway
// brokers permission prompts and position fixes for a paired device.
type Gateway struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewGateway creates a Gateway client.
func NewGateway(baseURL, apiKey string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// RequestPermission asks the gateway for a location grant.
func (g *Gateway) RequestPermission(ctx context.Context) error {
	resp, err := g.do(ctx, http.MethodPost, "/v1/permission")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return g.checkStatus(resp)
}

// Position fetches the current coordinate fix.
func (g *Gateway) Position(ctx context.Context) (domain.GeoPoint, error) {
	resp, err := g.do(ctx, http.MethodGet, "/v1/position")
	if err != nil {
		return domain.GeoPoint{}, err
	}
	defer resp.Body.Close()

	if err := g.checkStatus(resp); err != nil {
		return domain.GeoPoint{}, err
	}

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.GeoPoint{}, domain.NewLocationError(domain.LocationUnknown,
			fmt.Errorf("decode position: %w", err))
	}
	return domain.GeoPoint{Lat: body.Latitude, Lon: body.Longitude}, nil
}

func (g *Gateway) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, nil)
	if err != nil {
		return nil, domain.NewLocationError(domain.LocationUnknown, err)
	}
	req.Header.Set("X-Api-Key", g.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewLocationError(domain.LocationTimeout, err)
		}
		return nil, domain.NewLocationError(domain.LocationUnavailable, err)
	}
	return resp, nil
}

func (g *Gateway) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return domain.NewLocationError(domain.LocationPermissionDenied,
			fmt.Errorf("gateway status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable:
		return domain.NewLocationError(domain.LocationUnavailable,
			fmt.Errorf("gateway status %d", resp.StatusCode))
	default:
		return domain.NewLocationError(domain.LocationUnknown,
			fmt.Errorf("gateway status %d", resp.StatusCode))
	}
}
