//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/tunitrip/internal/adapters/catalog"
	handler "github.com/samirrijal/tunitrip/internal/adapters/http"
	"github.com/samirrijal/tunitrip/internal/adapters/postgres"
	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/config"
)

// setupTestDB connects to the test database (migrated with cmd/migrate up) and
// seeds it with the bundled catalog.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("tunitrip-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	vehicles, _ := cat.List(ctx)
	if err := postgres.NewVehicleRepo(db).Upsert(ctx, vehicles); err != nil {
		t.Fatalf("seed vehicles: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies backed by the real vehicle table, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	vehicles := usecases.NewVehicleService(postgres.NewVehicleRepo(db), nil)
	routes := usecases.NewRouteService(&mockRouteProvider{}, nil)
	prices := usecases.NewFuelPriceService(&mockPriceSource{}, nil)
	sessions := usecases.NewSessionService(routes, prices, vehicles, nil)
	t.Cleanup(sessions.Wait)

	return &handler.Dependencies{
		Routes:   routes,
		Prices:   prices,
		Vehicles: vehicles,
		Sessions: sessions,
		DB:       db,
	}
}

func TestListVehicles_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/vehicles?limit=5", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Vehicle    `json:"data"`
		Pagination struct{ Total int } `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Pagination.Total < 30 {
		t.Errorf("expected at least 30 vehicles, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 5 || result.Data[0].ID != 1 {
		t.Errorf("unexpected first page: %+v", result.Data)
	}
}

func TestGetVehicle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/vehicles/1", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var v domain.Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if v.Brand != "Renault" || v.Model != "Clio" || v.FuelConsumption.Combined <= 0 {
		t.Errorf("unexpected vehicle %+v", v)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/vehicles/100000", nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for missing vehicle, got %d", resp.StatusCode)
	}
}

func TestSearchVehicles_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/vehicles?q=multijet", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}

	var vehicles []domain.Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&vehicles); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(vehicles) == 0 {
		t.Fatal("expected Multijet vehicles")
	}
	for _, v := range vehicles {
		if v.DefaultFuelType() != domain.FuelDiesel {
			t.Errorf("%s %s: expected diesel, got %s", v.Brand, v.Model, v.DefaultFuelType())
		}
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected ready with a live database, got %d", resp.StatusCode)
	}
}
