package middleware

import (
	"net/http"
	"time"

	"memo-notion-api/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// clientLimiter はクライアントIPごとのトークンバケットを期限付きLRUで保持する
type clientLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newClientLimiter(requestsPerMin int) *clientLimiter {
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](1000, nil, 5*time.Minute),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
	}
}

func (cl *clientLimiter) allow(key string) bool {
	limiter, ok := cl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(cl.rate, cl.burst)
		cl.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}

// RateLimitMiddleware レート制限用のmiddleware
func RateLimitMiddleware(requestsPerMin int) gin.HandlerFunc {
	cl := newClientLimiter(requestsPerMin)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !cl.allow(clientIP) {
			logger.WithField("client_ip", clientIP).Warn("レート制限に達しました")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too Many Requests",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
