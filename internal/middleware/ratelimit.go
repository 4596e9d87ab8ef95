package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cutmatch/cutmatch-api/internal/cache"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
)

// RateLimit allows max requests per client IP in each fixed window.
//
// Behavior:
//   - Counters live in Redis so every instance shares the budget.
//   - Sets X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset.
//   - Over budget → 429. If Redis is unavailable the request is let through.
func RateLimit(rc *cache.RedisCache, max int64, window time.Duration, log *slog.Logger) gin.HandlerFunc {
	return rateLimit(rc, max, window, log, time.Now)
}

func rateLimit(rc *cache.RedisCache, max int64, window time.Duration, log *slog.Logger, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := now().Truncate(window)
		key := rc.KeyForRateLimit(c.ClientIP(), start)

		count, err := rc.Hit(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(start.Add(window).Unix(), 10))

		if count > max {
			c.Error(svcErr.TooManyRequests("Too many requests, please try again later."))
			c.Abort()
			return
		}
		c.Next()
	}
}
