package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/samirrijal/tunitrip/internal/pkg/metrics"
)

// Outbound calls (OSRM, price page) are bounded by their own client timeouts;
// this caps the whole request.
const requestTimeout = 30 * time.Second

// SetupRoutes registers all REST and GraphQL routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/api/fuel-prices", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/fuel-prices"},
	}))

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")
	v1.Get("/cities", ListCitiesHandler())
	v1.Get("/vehicles", withTimeout(ListVehiclesHandler(deps)))
	v1.Get("/vehicles/:id", withTimeout(GetVehicleHandler(deps)))
	v1.Get("/fuel-prices", withTimeout(FuelPricesHandler(deps)))
	v1.Post("/routes", withTimeout(RouteHandler(deps)))
	v1.Post("/quotes", withTimeout(QuoteHandler(deps)))
	v1.Post("/polyline/decode", DecodePolylineHandler())

	// Planning sessions
	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Get("/sessions/:id", GetSessionHandler(deps))
	v1.Delete("/sessions/:id", DeleteSessionHandler(deps))
	v1.Put("/sessions/:id/origin", withTimeout(SessionPointHandler(deps.Sessions.SetOrigin)))
	v1.Put("/sessions/:id/destination", withTimeout(SessionPointHandler(deps.Sessions.SetDestination)))
	v1.Post("/sessions/:id/waypoints", withTimeout(SessionPointHandler(deps.Sessions.AddWaypoint)))
	v1.Delete("/sessions/:id/waypoints/:index", withTimeout(RemoveWaypointHandler(deps)))
	v1.Delete("/sessions/:id/points", ClearPointsHandler(deps))
	v1.Put("/sessions/:id/vehicle", SelectVehicleHandler(deps))
	v1.Put("/sessions/:id/fuel-type", SetFuelTypeHandler(deps))
	v1.Get("/sessions/:id/receipt", ReceiptHandler(deps))

	// Deprecated alias kept for the existing UI shell
	app.Get("/api/fuel-prices", withTimeout(FuelPricesHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)
}
