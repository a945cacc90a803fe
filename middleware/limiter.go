package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func limitReached(c *fiber.Ctx) error {
	return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests, please try again later.", nil)
}

// GlobalRateLimiter caps every client at 100 requests per minute
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          100,
		Expiration:   time.Minute,
		LimitReached: limitReached,
	})
}

// LoginRateLimiter slows down password guessing per IP
func LoginRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          10,
		Expiration:   5 * time.Minute,
		LimitReached: limitReached,
	})
}

func RegisterRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          3,
		Expiration:   5 * time.Minute,
		LimitReached: limitReached,
	})
}

// OTPRateLimiter keys on IP plus the requested email so one client cannot spam
// verification mail to a single inbox
func OTPRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        3,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			var body struct {
				Email string `json:"email"`
			}
			_ = c.BodyParser(&body)
			return c.IP() + "|" + strings.ToLower(strings.TrimSpace(body.Email))
		},
		LimitReached: limitReached,
	})
}

// ContactRateLimiter protects the public contact form
func ContactRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          5,
		Expiration:   time.Hour,
		LimitReached: limitReached,
	})
}
