// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/entrypoint/dto"
)

const (
	// fallbackMaxAttempts applies when no upload limit is configured.
	fallbackMaxAttempts = 5
	// fallbackWindow applies when no upload window is configured.
	fallbackWindow = time.Minute
)

// clientWindow is the counting state for one client IP.
type clientWindow struct {
	attempts int
	resetAt  time.Time
}

// RateLimiter throttles statement uploads per client IP over a fixed window.
// Counters live in memory, so the limit is per process.
type RateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*clientWindow
	maxAttempts int
	window      time.Duration
}

// NewRateLimiterWithConfig creates a rate limiter for the given budget.
// Non-positive values fall back to the defaults.
func NewRateLimiterWithConfig(maxAttempts int, window time.Duration) *RateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = fallbackMaxAttempts
	}
	if window <= 0 {
		window = fallbackWindow
	}
	return &RateLimiter{
		windows:     make(map[string]*clientWindow),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Middleware returns the gin handler enforcing the limit. The test
// environments bypass it so scenario runs are not throttled.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if os.Getenv("E2E_MODE") == "true" || os.Getenv("ENV") == "test" {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.Request.RemoteAddr
		}

		if !rl.allow(clientIP) {
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  string(domainerror.ErrCodeRateLimited),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &clientWindow{attempts: 1, resetAt: now.Add(rl.window)}
		return true
	}
	if w.attempts < rl.maxAttempts {
		w.attempts++
		return true
	}
	return false
}

// Reset drops all counters.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.windows = make(map[string]*clientWindow)
}

// Cleanup removes expired windows so long-lived processes do not accumulate
// one entry per client ever seen.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}
