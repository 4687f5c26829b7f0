package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/logger"
	"github.com/charlesng35/bellcenter/pkg/metrics"
	"github.com/charlesng35/bellcenter/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. When the
// store fails the request is let through and the failure logged.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	if store == nil {
		store = NewMemoryRateStore()
	}

	return func(c *gin.Context) {
		if maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		key := "rl:" + c.ClientIP() + "|" + route

		count, ttl, err := store.Increment(requestCtx(c), key, window)
		if err != nil {
			logger.WithModule("ratelimit").Warn("rate store unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))

		if count > maxRequests {
			metrics.RateLimited.WithLabelValues(route).Inc()
			c.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
