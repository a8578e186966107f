package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const clientHeader = "X-Client-ID"

// RateLimiter enforces a minimum interval between requests per client.
type RateLimiter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	interval time.Duration
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		lastSeen: make(map[string]time.Time),
		interval: interval,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(clientHeader)
		if clientID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": clientHeader + " header required"})
			c.Abort()
			return
		}
		if !r.allow(clientID) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if last, ok := r.lastSeen[clientID]; ok && now.Sub(last) < r.interval {
		return false
	}
	r.lastSeen[clientID] = now
	return true
}
