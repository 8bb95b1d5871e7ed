package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tienda-api/config"
)

const (
	rateLimitPeriod = 1 * time.Minute
	rateLimitCount  = 5
)

// RateLimiter allows rateLimitCount requests per IP per period, counted in
// Redis. Without Redis it lets everything through.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		key := "rate_limit:" + ip

		count, err := config.RedisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis trouble should not block logins.
			c.Next()
			return
		}

		if count == 1 {
			config.RedisClient.Expire(c.Request.Context(), key, rateLimitPeriod)
		}

		if count > rateLimitCount {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
