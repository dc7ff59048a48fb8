package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/tunitrip/internal/adapters/catalog"
	"github.com/samirrijal/tunitrip/internal/adapters/googlemaps"
	"github.com/samirrijal/tunitrip/internal/adapters/http"
	natsadapter "github.com/samirrijal/tunitrip/internal/adapters/nats"
	"github.com/samirrijal/tunitrip/internal/adapters/osrm"
	"github.com/samirrijal/tunitrip/internal/adapters/postgres"
	"github.com/samirrijal/tunitrip/internal/adapters/scraper"
	"github.com/samirrijal/tunitrip/internal/adapters/valkey"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/config"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
	"github.com/samirrijal/tunitrip/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tunitrip-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (only for the postgres catalog)
	var db *postgres.DB
	if cfg.Catalog.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
	}

	vehicleRepo, err := vehicleRepository(cfg.Catalog, db)
	if err != nil {
		log.Fatalf("vehicle catalog: %v", err)
	}

	// Cache
	var (
		cache      *valkey.Cache
		cachePort  ports.CacheService
		events     *natsadapter.Publisher
		eventsPort ports.EventPublisher
	)
	if cfg.Valkey.Addr != "" {
		cache, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable, caching disabled", "error", err)
		} else {
			defer cache.Close()
			cachePort = cache
		}
	}

	// NATS
	if cfg.NATS.URL != "" {
		events, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			defer events.Close()
			eventsPort = events
		}
	}

	provider, err := routeProvider(cfg.Routing)
	if err != nil {
		log.Fatalf("route provider: %v", err)
	}
	priceSource := scraper.New(cfg.Prices.SourceURL, cfg.Prices.Country, cfg.Prices.UserAgent, cfg.Prices.Timeout)

	// Use cases
	routeSvc := usecases.NewRouteService(provider, cachePort)
	priceSvc := usecases.NewFuelPriceService(priceSource, eventsPort)
	vehicleSvc := usecases.NewVehicleService(vehicleRepo, cachePort)
	sessionSvc := usecases.NewSessionService(routeSvc, priceSvc, vehicleSvc, eventsPort)
	sessionSvc.SetIdleTimeout(cfg.Sessions.IdleTimeout)
	go sessionSvc.Run(ctx, cfg.Sessions.SweepInterval)

	deps := &http.Dependencies{
		Routes:    routeSvc,
		Prices:    priceSvc,
		Vehicles:  vehicleSvc,
		Sessions:  sessionSvc,
		DB:        db,
		Cache:     cache,
		Events:    events,
		RateLimit: cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "TuniTrip API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "route_provider", provider.Name(), "catalog", cfg.Catalog.Source)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	cancel()
	sessionSvc.Wait()

	slog.Info("server stopped")
}

func routeProvider(cfg config.RoutingConfig) (ports.RouteProvider, error) {
	switch cfg.Provider {
	case "google":
		// routing.base_url defaults to the OSRM server; only an explicit
		// override is passed on to the Directions client.
		baseURL := cfg.BaseURL
		if baseURL == osrm.DefaultBaseURL {
			baseURL = ""
		}
		return googlemaps.New(cfg.GoogleAPIKey, baseURL, cfg.Timeout)
	default:
		return osrm.New(cfg.BaseURL, cfg.Timeout), nil
	}
}

func vehicleRepository(cfg config.CatalogConfig, db *postgres.DB) (ports.VehicleRepository, error) {
	switch {
	case cfg.Source == "postgres":
		return postgres.NewVehicleRepo(db), nil
	case cfg.Path != "":
		return catalog.Load(cfg.Path)
	default:
		return catalog.Default()
	}
}
