package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

func HttpCacheInMemory(ttl int) fiber.Handler {
	if ttl <= 0 {
		ttl = 5
	}
	return cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			// Run status and quota standing are polled live; even a few
			// seconds of staleness breaks the confirmation flow.
			path := c.Path()
			return strings.Contains(path, "/bulk/") || strings.HasSuffix(path, "/limits")
		},
		Expiration: time.Duration(ttl) * time.Second,
	})
}
