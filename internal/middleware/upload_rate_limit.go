package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/songhub/backend/internal/config"
)

// UploadRateLimit caps the number of cover uploads an admin may make per day.
// Song submissions without a cover_photo file are not counted. The counter resets
// at local midnight.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config, l *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isUploadRequest(c) {
			c.Next()
			return
		}

		admin := c.GetString(AdminUsernameKey)
		if admin == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := time.Now()
		key := fmt.Sprintf("upload_limit:%s:%s", admin, now.Format("2006-01-02"))

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			if err := redisClient.Set(ctx, key, 1, midnight.Sub(now)).Err(); err != nil {
				l.Warn("upload limiter failed to set key", "key", key, "err", err)
			}
		} else if err != nil {
			// redis trouble never blocks an upload
			l.Warn("upload limiter unavailable", "err", err)
		} else if count >= cfg.UploadMaxPerDay {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":              "error",
				"message":             "Too many uploads today. Please try again tomorrow.",
				"retry_after_hours":   int(ttl.Hours()),
				"uploads_today":       count,
				"max_uploads_per_day": cfg.UploadMaxPerDay,
			})
			return
		} else {
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}

// isUploadRequest matches song create/update submissions that carry a cover file.
// The parsed form is cached on the request for the handler.
func isUploadRequest(c *gin.Context) bool {
	r := c.Request
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/admin/songs") {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return false
	}
	_, err := c.FormFile("cover_photo")
	return err == nil
}
