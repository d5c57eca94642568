package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware emits one structured slog line per request. Session
// mutations and nearby searches are the hot paths, so the line carries
// latency and the response size alongside the request ID.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()
		requestID := c.Get(fiber.HeaderXRequestID, "unknown")

		err := c.Next()

		status := c.Response().StatusCode()

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.Context(), level, fmt.Sprintf("%s %s", method, path), attrs...)
		return err
	}
}
