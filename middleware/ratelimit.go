package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	rateLimit  = 100
	rateWindow = time.Minute
)

type clientWindow struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
}

var limiter = &rateLimiter{clients: make(map[string]*clientWindow)}

func init() {
	go func() {
		ticker := time.NewTicker(rateWindow)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()
}

// RateLimiter enforces a fixed window of rateLimit requests per client IP.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		limiter.mu.Lock()
		client, ok := limiter.clients[ip]
		if !ok || now.After(client.resetAt) {
			limiter.clients[ip] = &clientWindow{count: 1, resetAt: now.Add(rateWindow)}
			limiter.mu.Unlock()
			c.Next()
			return
		}
		if client.count >= rateLimit {
			retry := client.resetAt.Sub(now).Seconds()
			limiter.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retry,
			})
			c.Abort()
			return
		}
		client.count++
		limiter.mu.Unlock()

		c.Next()
	}
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for ip, client := range rl.clients {
		if now.After(client.resetAt) {
			delete(rl.clients, ip)
		}
	}
}
