// Package osrm implements ports.RouteProvider against an OSRM routing server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/httpclient"
)

// DefaultBaseURL is the public OSRM demo server.
const DefaultBaseURL = "https://router.project-osrm.org"

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Geometry string  `json:"geometry"`
	} `json:"routes"`
}

// Client queries the OSRM route service with the driving profile.
type Client struct {
	baseURL string
	http    *httpclient.Client
}

// New creates a new OSRM client.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.New(timeout, "tunitrip/1.0"),
	}
}

func (c *Client) Name() string { return "osrm" }

// FetchRoute returns the first route OSRM proposes through points, in order.
// Distances come back in meters.
func (c *Client) FetchRoute(ctx context.Context, points []domain.GeoPoint) (*domain.RouteResult, error) {
	body, err := c.http.Get(ctx, c.routeURL(points))
	if err != nil {
		return nil, fmt.Errorf("osrm: %w", err)
	}

	var resp routeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("osrm: decode response: %w", err)
	}
	if len(resp.Routes) == 0 {
		if resp.Code != "" && resp.Code != "Ok" {
			return nil, fmt.Errorf("osrm %s %s: %w", resp.Code, resp.Message, ports.ErrNoRoute)
		}
		return nil, ports.ErrNoRoute
	}

	best := resp.Routes[0]
	return &domain.RouteResult{
		TotalDistanceKm: best.Distance / 1000,
		EncodedGeometry: best.Geometry,
	}, nil
}

// routeURL builds {base}/route/v1/driving/{lon,lat;lon,lat...}?overview=full.
func (c *Client) routeURL(points []domain.GeoPoint) string {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
	}
	return c.baseURL + "/route/v1/driving/" + strings.Join(coords, ";") + "?overview=full"
}
