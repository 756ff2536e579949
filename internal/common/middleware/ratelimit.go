package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/errors"
)

const rateLimitPrefix = "rl"

// RateLimit allows at most limit requests per client IP per window for the named scope.
// A nil client or a non-positive limit disables it. Redis errors let the request through.
func RateLimit(client *redis.Client, scope string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := rateLimitPrefix + ":" + scope + ":" + c.ClientIP()
		count, err := hit(c.Request.Context(), client, key, window)
		if err != nil {
			logger.Warn("rate limiter unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(limit) {
			RespondError(c, errors.RateLimited())
			return
		}
		c.Next()
	}
}

func hit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
