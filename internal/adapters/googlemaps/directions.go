// Package googlemaps implements ports.RouteProvider with the Google Directions API.
package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

// Provider asks Google Directions for a driving route.
type Provider struct {
	client *maps.Client
}

// New creates a Directions provider. baseURL is only set in tests. A positive
// timeout bounds each Directions call.
func New(apiKey, baseURL string, timeout time.Duration) (*Provider, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string { return "google" }

// FetchRoute requests a driving route through points. The distance is the sum
// of all legs of the first route.
func (p *Provider) FetchRoute(ctx context.Context, points []domain.GeoPoint) (*domain.RouteResult, error) {
	if len(points) < 2 {
		return nil, ports.ErrNoRoute
	}

	req := &maps.DirectionsRequest{
		Origin:      latLng(points[0]),
		Destination: latLng(points[len(points)-1]),
		Mode:        maps.TravelModeDriving,
		Region:      "tn",
	}
	for _, wp := range points[1 : len(points)-1] {
		req.Waypoints = append(req.Waypoints, latLng(wp))
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	// ZERO_RESULTS is not an error for the client, just an empty list.
	if len(routes) == 0 {
		return nil, ports.ErrNoRoute
	}

	best := routes[0]
	meters := 0
	for _, leg := range best.Legs {
		meters += leg.Distance.Meters
	}
	return &domain.RouteResult{
		TotalDistanceKm: float64(meters) / 1000,
		EncodedGeometry: best.OverviewPolyline.Points,
	}, nil
}

func latLng(p domain.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}
