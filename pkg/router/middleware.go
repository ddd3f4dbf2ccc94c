package router

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func HttpRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("request_id", requestID)
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

func HttpRealIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		xForwardedFor := c.Get(http.CanonicalHeaderKey("X-Forwarded-For"))
		if xForwardedFor != "" {
			parts := strings.Split(xForwardedFor, ",")
			if len(parts) > 0 {
				c.Locals("remote_ip", strings.TrimSpace(parts[0]))
			}
		} else {
			xRealIP := c.Get(http.CanonicalHeaderKey("X-Real-IP"))
			if xRealIP != "" {
				c.Locals("remote_ip", strings.TrimSpace(xRealIP))
			}
		}
		return c.Next()
	}
}

type ipThrottle struct {
	mu       sync.Mutex
	limiters map[string]*ipThrottleEntry
	rps      rate.Limit
	burst    int
}

type ipThrottleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// HttpThrottle applies a per-IP token bucket to mutating routes. The domain
// rate limiter tracks per-client quotas; this only shields the process from
// request floods.
func HttpThrottle(requestsPerSecond float64, burst int) fiber.Handler {
	t := &ipThrottle{
		limiters: make(map[string]*ipThrottleEntry),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	go t.cleanup()

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet {
			return c.Next()
		}
		ip := c.IP()
		if v := c.Locals("remote_ip"); v != nil {
			if s, ok := v.(string); ok && s != "" {
				ip = s
			}
		}
		if !t.allow(ip) {
			return ResponseTooManyRequests(c, "Too many requests", nil)
		}
		return c.Next()
	}
}

func (t *ipThrottle) allow(ip string) bool {
	t.mu.Lock()
	entry, ok := t.limiters[ip]
	if !ok {
		entry = &ipThrottleEntry{limiter: rate.NewLimiter(t.rps, t.burst)}
		t.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	t.mu.Unlock()
	return entry.limiter.Allow()
}

func (t *ipThrottle) cleanup() {
	for range time.Tick(10 * time.Minute) {
		t.mu.Lock()
		for ip, entry := range t.limiters {
			if time.Since(entry.lastSeen) > 30*time.Minute {
				delete(t.limiters, ip)
			}
		}
		t.mu.Unlock()
	}
}
