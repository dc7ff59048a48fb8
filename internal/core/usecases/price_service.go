package usecases

import (
	"context"
	"errors"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
	"github.com/samirrijal/tunitrip/internal/pkg/telemetry"
)

// Fallback prices, February 2024.
var FallbackPrices = domain.FuelPrices{Diesel: 2.205, Gasoline: 2.52}

// DefaultSessionPrices are shown until the first resolution of a session lands.
var DefaultSessionPrices = domain.FuelPrices{Diesel: 2.155, Gasoline: 2.4}

const (
	FallbackAsOf    = "2024-02-01"
	FallbackWarning = "Live prices unavailable, using fallback data"

	// A gasoline price under this is taken to be in USD rather than TND.
	usdThreshold = 1.0
	usdToTND     = 3.1
)

// FuelPriceService resolves current fuel prices. It never fails: a source
// that cannot be reached yields the fallback pair with a warning, a page
// without a usable row yields the fallback pair as a dated live quote.
type FuelPriceService struct {
	source    ports.PriceSource
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewFuelPriceService creates a new FuelPriceService. publisher may be nil.
func NewFuelPriceService(source ports.PriceSource, publisher ports.EventPublisher) *FuelPriceService {
	return &FuelPriceService{source: source, publisher: publisher, now: time.Now}
}

// Resolve fetches, validates and normalises the live prices.
func (s *FuelPriceService) Resolve(ctx context.Context) domain.PriceQuote {
	log := logging.FromContext(ctx)
	ctx, span := telemetry.Tracer().Start(ctx, "prices.resolve")
	defer span.End()

	quote, outcome := s.resolve(ctx)
	span.SetAttributes(attribute.String("prices.outcome", outcome))
	metrics.PriceResolutions.WithLabelValues(outcome).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishPrices(ctx, &quote); err != nil {
			log.Warn("publish prices", "error", err)
		}
	}
	return quote
}

func (s *FuelPriceService) resolve(ctx context.Context) (domain.PriceQuote, string) {
	log := logging.FromContext(ctx)

	raw, err := s.source.FetchPrices(ctx)
	if err != nil && !errors.Is(err, ports.ErrPriceNotFound) {
		log.Error("price scraping failed, using fallback", "source", s.source.Name(), "error", err)
		return Fallback(), "fallback"
	}

	prices := domain.FuelPrices{Diesel: raw.Diesel, Gasoline: raw.Gasoline}
	outcome := "live"
	if err != nil || !usable(prices.Gasoline) || !usable(prices.Diesel) {
		// The page answered but without a usable row: the fallback values
		// are served as a regular quote, without the outage warning.
		log.Warn("could not find prices in expected format, using fallback", "source", s.source.Name())
		prices = FallbackPrices
		outcome = "missing"
	}
	if prices.Gasoline < usdThreshold {
		prices.Gasoline *= usdToTND
		prices.Diesel *= usdToTND
		outcome = "converted"
	}

	return domain.PriceQuote{
		FuelPrices:  prices,
		LastUpdated: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Source:      s.source.Name(),
	}, outcome
}

// Fallback is the static quote served when live prices cannot be trusted.
func Fallback() domain.PriceQuote {
	return domain.PriceQuote{
		FuelPrices:  FallbackPrices,
		LastUpdated: FallbackAsOf,
		Warning:     FallbackWarning,
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
