package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/v1/cities":
			ttl = "public, max-age=86400" // fixed gazetteer

		case strings.HasPrefix(path, "/v1/vehicles"):
			ttl = "public, max-age=3600"

		case path == "/v1/fuel-prices" || path == "/api/fuel-prices":
			ttl = "public, max-age=900"

		case strings.HasPrefix(path, "/v1/sessions"):
			ttl = "no-store" // per-user state

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
