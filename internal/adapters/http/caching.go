package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers can still override by setting the header themselves.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/discovery/search"):
			ttl = "public, max-age=60" // Search results shift as the catalog does

		case strings.HasPrefix(path, "/v1/discovery/suggest"):
			ttl = "public, max-age=300" // Vocabulary refreshes slowly

		case strings.HasPrefix(path, "/v1/listings/") && strings.HasSuffix(path, "/zones"):
			ttl = "public, max-age=600" // Coverage zones rarely move

		case strings.HasPrefix(path, "/v1/listings/"):
			ttl = "public, max-age=600" // 10 min for single listing

		case path == "/v1/catalog/stats":
			ttl = "public, max-age=60" // Catalog counters: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
