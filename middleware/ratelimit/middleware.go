package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// KeyFunc extracts the identity a request is limited by. An empty key falls
// back to the client IP.
type KeyFunc func(c *fiber.Ctx) string

// Rule is one named limit.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
	Key    KeyFunc
}

// Middleware builds fiber handlers backed by a Limiter. A Middleware without
// a limiter lets every request through.
type Middleware struct {
	limiter *Limiter
}

// NewMiddleware creates a middleware. limiter may be nil.
func NewMiddleware(limiter *Limiter) *Middleware {
	return &Middleware{limiter: limiter}
}

// Connect opens a Redis client for the limiter and checks it is reachable.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// ByIP keys requests by client IP.
func ByIP(c *fiber.Ctx) string {
	return c.IP()
}

// Handler enforces rule. Limiter failures let the request through.
func (m *Middleware) Handler(rule Rule) fiber.Handler {
	keyFunc := rule.Key
	if keyFunc == nil {
		keyFunc = ByIP
	}

	return func(c *fiber.Ctx) error {
		if m.limiter == nil {
			return c.Next()
		}

		key := keyFunc(c)
		if key == "" {
			key = c.IP()
		}

		result, err := m.limiter.Allow(c.UserContext(), rule.Name+":"+key, rule.Limit, rule.Window)
		if err != nil {
			log.Printf("[ratelimit] Warning: limit check for %s failed, allowing request: %v", rule.Name, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			return tooManyRequests(c, result)
		}
		return c.Next()
	}
}

func tooManyRequests(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "rate_limited",
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
