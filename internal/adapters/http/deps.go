package http

import (
	natsadapter "github.com/samirrijal/tunitrip/internal/adapters/nats"
	"github.com/samirrijal/tunitrip/internal/adapters/postgres"
	"github.com/samirrijal/tunitrip/internal/adapters/valkey"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. DB, Cache and
// Events are optional.
type Dependencies struct {
	Routes   *usecases.RouteService
	Prices   *usecases.FuelPriceService
	Vehicles *usecases.VehicleService
	Sessions *usecases.SessionService
	DB       *postgres.DB
	Cache    *valkey.Cache
	Events   *natsadapter.Publisher

	// RateLimit is the per-IP request budget per minute; 0 disables limiting.
	RateLimit int
}
