package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/songhub/backend/internal/config"
)

// RateLimiter limits requests per client IP with a fixed window counter in Redis.
// When Redis is unreachable the limiter steps aside.
func RateLimiter(redisClient *redis.Client, cfg *config.Config, l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			l.Warn("redis not available for rate limiting", "err", err)
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			if err := redisClient.Set(ctx, key, 1, cfg.RateLimitDuration).Err(); err != nil {
				l.Warn("rate limiter failed to set key", "key", key, "err", err)
				c.Next()
				return
			}
			count = 0
		} else if err != nil {
			l.Warn("rate limiter failed to get key", "key", key, "err", err)
			c.Next()
			return
		} else if count >= cfg.RateLimitRequests {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.RateLimitRequests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":      "error",
				"message":     "Too many requests.",
				"retry_after": ttl.Seconds(),
			})
			return
		} else {
			newCount, _ := redisClient.Incr(ctx, key).Result()
			count = int(newCount) - 1
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.RateLimitRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", cfg.RateLimitRequests-count-1))
		c.Next()
	}
}
