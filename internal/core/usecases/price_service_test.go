package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
)

func priceSource(g, d float64, err error) *mockPriceSource {
	return &mockPriceSource{
		fetchFn: func(ctx context.Context) (ports.RawPrices, error) {
			return ports.RawPrices{Gasoline: g, Diesel: d}, err
		},
	}
}

func TestFuelPriceService_Live(t *testing.T) {
	svc := usecases.NewFuelPriceService(priceSource(2.525, 2.205, nil), nil)
	q := svc.Resolve(context.Background())

	if q.Gasoline != 2.525 || q.Diesel != 2.205 {
		t.Errorf("unexpected prices %+v", q.FuelPrices)
	}
	if q.Warning != "" || q.Degraded() {
		t.Errorf("live quote should carry no warning, got %q", q.Warning)
	}
	if q.Source != "mock-prices" {
		t.Errorf("expected source label, got %q", q.Source)
	}
	if _, err := time.Parse(time.RFC3339, q.LastUpdated); err != nil {
		t.Errorf("lastUpdated %q is not a timestamp: %v", q.LastUpdated, err)
	}
}

func TestFuelPriceService_ConvertsLowValues(t *testing.T) {
	svc := usecases.NewFuelPriceService(priceSource(0.8, 0.7, nil), nil)
	q := svc.Resolve(context.Background())

	if math.Abs(q.Gasoline-0.8*3.1) > 1e-12 || math.Abs(q.Diesel-0.7*3.1) > 1e-12 {
		t.Errorf("expected both prices scaled by 3.1, got %+v", q.FuelPrices)
	}
	if q.Degraded() {
		t.Errorf("converted quote is not a fallback")
	}
}

func TestFuelPriceService_FallbackOnError(t *testing.T) {
	src := priceSource(0, 0, errors.New("connection reset"))
	q := usecases.NewFuelPriceService(src, nil).Resolve(context.Background())

	if q.Diesel != 2.205 || q.Gasoline != 2.52 {
		t.Errorf("expected fallback pair, got %+v", q.FuelPrices)
	}
	if q.Warning == "" {
		t.Error("expected a warning")
	}
	if q.LastUpdated != "2024-02-01" {
		t.Errorf("expected fixed fallback date, got %q", q.LastUpdated)
	}
	if q.Source != "" {
		t.Errorf("fallback quote should carry no source, got %q", q.Source)
	}
}

func TestFuelPriceService_MissingRowUsesFallbackValues(t *testing.T) {
	cases := map[string]*mockPriceSource{
		"row missing":   priceSource(0, 0, ports.ErrPriceNotFound),
		"gasoline only": priceSource(2.5, 0, nil),
		"not finite":    priceSource(math.Inf(1), 2.2, nil),
		"nan":           priceSource(2.5, math.NaN(), nil),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			q := usecases.NewFuelPriceService(src, nil).Resolve(context.Background())
			if q.Diesel != 2.205 || q.Gasoline != 2.52 {
				t.Errorf("expected fallback pair, got %+v", q.FuelPrices)
			}
			if q.Warning != "" || q.Degraded() {
				t.Errorf("a reachable source should not raise the outage warning, got %q", q.Warning)
			}
			if q.Source != "mock-prices" {
				t.Errorf("expected source label, got %q", q.Source)
			}
			if _, err := time.Parse(time.RFC3339, q.LastUpdated); err != nil {
				t.Errorf("lastUpdated %q is not a timestamp: %v", q.LastUpdated, err)
			}
		})
	}
}

func TestFuelPriceService_PublishesQuote(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewFuelPriceService(priceSource(2.5, 2.2, nil), pub)
	svc.Resolve(context.Background())

	if len(pub.prices) != 1 || pub.prices[0].Gasoline != 2.5 {
		t.Errorf("expected one published quote, got %+v", pub.prices)
	}
}
