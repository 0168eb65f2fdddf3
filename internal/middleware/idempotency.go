package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Header names used by idempotent replay
const (
	CorrelationIDHeader    = "X-Correlation-ID"
	IdempotentReplayHeader = "X-Idempotent-Replay"
)

const idempotencyKeyPrefix = "upload:idempotency:"

// IdempotencyMiddleware replays the cached 2xx body of a POST/PUT/PATCH that carried the
// same X-Correlation-ID within ttl, so a retried upload does not write a second file.
// onReplay, if non-nil, is called for every replayed request.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration, onReplay func()) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := idempotencyKeyPrefix + correlationID

		cached, err := redisClient.Get(c.UserContext(), key).Bytes()
		if err == nil && len(cached) > 0 {
			if onReplay != nil {
				onReplay()
			}
			c.Set(IdempotentReplayHeader, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}
		if err != nil && err != redis.Nil {
			// Redis trouble must not block uploads
			log.Printf("Warning: idempotency lookup failed: %v", err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			// fasthttp reuses the response buffer once the handler returns
			body := append([]byte(nil), c.Response().Body()...)
			if len(body) > 0 {
				go func() {
					bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					if err := redisClient.Set(bgCtx, key, body, ttl).Err(); err != nil {
						log.Printf("Warning: failed to cache response for %s: %v", correlationID, err)
					}
				}()
			}
		}

		return nil
	}
}
