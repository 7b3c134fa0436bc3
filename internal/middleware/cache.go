package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/filmhub/internal/cache"
)

// CacheResponses serves repeated catalog GETs from the store instead of the
// upstream API. Keys include the full request URI so every query-parameter
// combination caches independently. Only 200 responses are stored.
func CacheResponses(store cache.Cache, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := "resp:" + c.OriginalURL()

		if body, ok := store.Get(key); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set("X-Cache", "HIT")
			return c.Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			body := make([]byte, len(c.Response().Body()))
			copy(body, c.Response().Body())
			store.Set(key, body, ttl)
		}
		c.Set("X-Cache", "MISS")

		return nil
	}
}
