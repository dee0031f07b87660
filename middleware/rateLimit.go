package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit allows each authenticated user perMinute requests with a burst of
// burst, falling back to the client IP for anonymous calls.
func RateLimit(perMinute, burst int) fiber.Handler {
	type bucket struct {
		lim *rate.Limiter
		ts  time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		ttl     = 10 * time.Minute
	)
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := c.Locals("userId").(uint); ok {
			key = fmt.Sprintf("user:%d", userID)
		}

		now := time.Now()
		mu.Lock()
		for k, b := range buckets {
			if now.Sub(b.ts) > ttl {
				delete(buckets, k)
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(limit, burst)}
			buckets[key] = b
		}
		b.ts = now
		allowed := b.lim.Allow()
		mu.Unlock()

		if !allowed {
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests, please slow down", nil)
		}
		return c.Next()
	}
}
