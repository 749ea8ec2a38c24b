package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// AdminActionRateLimit guards destructive admin actions (deletes cascade through a whole
// category). Past maxActions per window the request is refused; at twice that the admin
// is blocked for an hour.
func AdminActionRateLimit(redisClient *redis.Client, maxActions int, window time.Duration, l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodDelete {
			c.Next()
			return
		}
		admin := c.GetString(AdminUsernameKey)
		if admin == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		blockKey := fmt.Sprintf("admin_blocked:%s", admin)
		countKey := fmt.Sprintf("admin_actions:%s", admin)

		if blocked, err := redisClient.Get(ctx, blockKey).Result(); err == nil && blocked == "1" {
			ttl, _ := redisClient.TTL(ctx, blockKey).Result()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":                "error",
				"message":               "Your account has been temporarily blocked due to suspicious activity.",
				"blocked_until_minutes": int(ttl.Minutes()),
			})
			return
		}

		count, err := redisClient.Incr(ctx, countKey).Result()
		if err != nil {
			l.Warn("admin action limiter unavailable", "err", err)
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(ctx, countKey, window)
		}

		if count > int64(2*maxActions) {
			_ = redisClient.Set(ctx, blockKey, "1", time.Hour).Err()
			l.Warn("admin blocked after repeated deletes", "admin", admin, "count", count)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":              "error",
				"message":             "Too many actions detected. Your account has been temporarily blocked for 1 hour.",
				"blocked_for_minutes": 60,
			})
			return
		}
		if count > int64(maxActions) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":              "error",
				"message":             "Too many actions in a short time. Please wait a few minutes.",
				"retry_after_minutes": int(window.Minutes()),
				"warning":             "Further attempts will result in a 1-hour block.",
			})
			return
		}

		c.Next()
	}
}
