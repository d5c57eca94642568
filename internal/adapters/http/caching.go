package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override a handler-set header
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/sessions"):
			ttl = "no-store" // Per-user browsing state, never shared

		case strings.HasPrefix(path, "/v1/countries"):
			ttl = "public, max-age=3600" // 1 hour for stable reference data

		case strings.HasPrefix(path, "/v1/venues/nearby"):
			ttl = "public, max-age=60" // Location results go stale fast

		case strings.Contains(path, "/reviews"):
			ttl = "public, max-age=60" // New reviews should show up quickly

		case strings.HasPrefix(path, "/v1/venues"):
			ttl = "public, max-age=300" // 5 min for venue listings

		case path == "/v1/catalog/status":
			ttl = "public, max-age=60" // Catalog stats: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
