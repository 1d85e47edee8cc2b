package middleware

import (
	"github.com/gofiber/fiber/v2"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"
)

type rateLimiter struct {
	bucket    cmap.ConcurrentMap[string, *rate.Limiter]
	rate      rate.Limit
	burstSize int
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    cmap.New[*rate.Limiter](),
		rate:      reqRate,
		burstSize: burstSize,
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	return r.bucket.Upsert(ip, nil, func(exist bool, current, _ *rate.Limiter) *rate.Limiter {
		if exist {
			return current
		}
		return rate.NewLimiter(r.rate, r.burstSize)
	})
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	limiter := m.rateLimitter.GetLimiterFrom(clientIP)

	if !limiter.Allow() {
		m.log.Warnf("too many requests for IP %s", clientIP)
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests",
		})
	}

	return ctx.Next()
}
