package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
	"github.com/samirrijal/tunitrip/internal/pkg/telemetry"
)

const routeCacheTTL = 6 * time.Hour

// RouteService acquires driving routes and their decoded geometry.
type RouteService struct {
	provider ports.RouteProvider
	cache    ports.CacheService
}

// NewRouteService creates a new RouteService. cache may be nil.
func NewRouteService(provider ports.RouteProvider, cache ports.CacheService) *RouteService {
	return &RouteService{provider: provider, cache: cache}
}

// Provider names the routing backend in use.
func (s *RouteService) Provider() string {
	return s.provider.Name()
}

// FetchRoute returns the best route through points (origin, waypoints in
// order, destination), or nil when the road distance is unavailable.
// Failures are logged and never returned. The call is not retried.
func (s *RouteService) FetchRoute(ctx context.Context, points []domain.GeoPoint) *domain.RouteResult {
	log := logging.FromContext(ctx)
	provider := s.provider.Name()

	if len(points) < 2 {
		log.Debug("route needs at least two points", "points", len(points))
		return nil
	}
	for i, p := range points {
		if !p.Valid() {
			log.Warn("route point out of range", "index", i, "lat", p.Lat, "lon", p.Lon)
			return nil
		}
	}

	ctx, span := telemetry.Tracer().Start(ctx, "route.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("route.provider", provider),
		attribute.Int("route.points", len(points)),
	)

	// Try cache
	cacheKey := routeCacheKey(provider, points)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.RouteResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("route").Inc()
				return attachPath(ctx, &res)
			}
		}
		metrics.CacheMisses.WithLabelValues("route").Inc()
	}

	start := time.Now()
	res, err := s.provider.FetchRoute(ctx, points)
	if err == nil && res == nil {
		err = ports.ErrNoRoute
	}
	metrics.RouteFetchDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, ports.ErrNoRoute) {
			outcome = "no_route"
		}
		metrics.RouteRequests.WithLabelValues(provider, outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.Warn("road distance unavailable", "provider", provider, "error", err)
		return nil
	}
	metrics.RouteRequests.WithLabelValues(provider, "ok").Inc()
	res.Provider = provider
	res.Path = nil
	span.SetAttributes(attribute.Float64("route.distance_km", res.TotalDistanceKm))

	// Cache the undecoded result; the path is rebuilt on read.
	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, routeCacheTTL)
		}
	}

	return attachPath(ctx, res)
}

// attachPath decodes the route geometry. A geometry that fails to decode
// leaves Path nil; the distance stays usable.
func attachPath(ctx context.Context, res *domain.RouteResult) *domain.RouteResult {
	res.Path = nil
	if res.EncodedGeometry == "" {
		return res
	}
	path, err := domain.DecodePath(res.EncodedGeometry)
	if err != nil {
		metrics.PolylineDecodeFailures.Inc()
		logging.FromContext(ctx).Warn("route geometry not drawable", "error", err)
		return res
	}
	res.Path = path
	return res
}

func routeCacheKey(provider string, points []domain.GeoPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.5f,%.5f", p.Lon, p.Lat)
	}
	return "route:" + provider + ":" + strings.Join(parts, ";")
}
