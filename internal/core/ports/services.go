package ports

import (
	"context"
	"errors"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/domain"
)

var (
	// ErrNoRoute is returned when the routing service answers without any route.
	ErrNoRoute = errors.New("no route returned")
	// ErrPriceNotFound is returned when the price page lacks a usable row.
	ErrPriceNotFound = errors.New("fuel prices not found in source")
)

// RouteProvider fetches a driving route through an ordered list of points.
// Only the first (best) route is returned.
type RouteProvider interface {
	Name() string
	FetchRoute(ctx context.Context, points []domain.GeoPoint) (*domain.RouteResult, error)
}

// RawPrices are per-liter prices as read from the source, before any correction.
type RawPrices struct {
	Gasoline float64
	Diesel   float64
}

// PriceSource reads current fuel prices from an external listing.
type PriceSource interface {
	Name() string
	FetchPrices(ctx context.Context) (RawPrices, error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// QuoteEvent is published whenever a trip cost is computed.
type QuoteEvent struct {
	SessionID string          `json:"session_id,omitempty"`
	VehicleID int             `json:"vehicle_id"`
	Cost      domain.TripCost `json:"cost"`
	At        time.Time       `json:"at"`
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishQuote(ctx context.Context, ev *QuoteEvent) error
	PublishPrices(ctx context.Context, quote *domain.PriceQuote) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeQuotes(ctx context.Context, handler func(ctx context.Context, ev *QuoteEvent) error) error
	SubscribePrices(ctx context.Context, handler func(ctx context.Context, quote *domain.PriceQuote) error) error
}
