package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/infrastructure/ratelimit"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// RateLimit limits requests per client IP. scope keeps counters of different
// route groups apart. A limiter error lets the request through.
func RateLimit(limiter ratelimit.RateLimiter, scope string, limits ratelimit.Limits, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, limits)
		if err != nil {
			log.Warnw("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
