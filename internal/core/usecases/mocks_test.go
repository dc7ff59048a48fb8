package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

// --- Mock RouteProvider ---

type mockRouteProvider struct {
	mu      sync.Mutex
	calls   [][]domain.GeoPoint
	fetchFn func(ctx context.Context, points []domain.GeoPoint) (*domain.RouteResult, error)
}

func (m *mockRouteProvider) Name() string { return "mock" }

func (m *mockRouteProvider) FetchRoute(ctx context.Context, points []domain.GeoPoint) (*domain.RouteResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]domain.GeoPoint{}, points...))
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, points)
	}
	return nil, ports.ErrNoRoute
}

func (m *mockRouteProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Mock PriceSource ---

type mockPriceSource struct {
	fetchFn func(ctx context.Context) (ports.RawPrices, error)
}

func (m *mockPriceSource) Name() string { return "mock-prices" }

func (m *mockPriceSource) FetchPrices(ctx context.Context) (ports.RawPrices, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return ports.RawPrices{}, errors.New("no source configured")
}

// --- Mock VehicleRepository ---

type mockVehicleRepo struct {
	vehicles []domain.Vehicle
}

func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.vehicles, nil
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	for _, v := range m.vehicles {
		if v.ID == id {
			v := v
			return &v, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (m *mockVehicleRepo) Search(ctx context.Context, query string, limit int) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		if strings.Contains(strings.ToLower(v.DisplayName()), strings.ToLower(query)) {
			out = append(out, v)
		}
	}
	return out, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[key]; ok {
		return b, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	quotes []ports.QuoteEvent
	prices []domain.PriceQuote
}

func (m *mockPublisher) PublishQuote(ctx context.Context, ev *ports.QuoteEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, *ev)
	return nil
}

func (m *mockPublisher) PublishPrices(ctx context.Context, q *domain.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, *q)
	return nil
}

// --- Fixtures ---

var (
	tunis  = domain.GeoPoint{Lat: 36.8065, Lon: 10.1815}
	sousse = domain.GeoPoint{Lat: 35.8245, Lon: 10.6346}
	sfax   = domain.GeoPoint{Lat: 34.7406, Lon: 10.7603}

	clio = domain.Vehicle{
		ID: 1, Brand: "Renault", Model: "Clio", Engine: "1.0 TCe 90",
		FuelConsumption: domain.FuelConsumption{City: 6.4, Highway: 4.6, Combined: 6.5},
	}
	partner = domain.Vehicle{
		ID: 2, Brand: "Peugeot", Model: "Partner", Engine: "1.6 BlueHDi 100",
		FuelConsumption: domain.FuelConsumption{City: 5.6, Highway: 4.4, Combined: 4.9},
	}
)

func catalog() *mockVehicleRepo {
	return &mockVehicleRepo{vehicles: []domain.Vehicle{clio, partner}}
}
