package http

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware adds a weak ETag to successful GET responses so that
// clients polling the catalog endpoints (countries, city venue lists) can
// revalidate cheaply instead of re-downloading unchanged payloads.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != 200 {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		// Weak tag: first 8 bytes of the body's SHA-256.
		sum := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set("ETag", etag)

		if c.Get("If-None-Match") == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}
