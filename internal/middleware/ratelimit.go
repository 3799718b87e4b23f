package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per key. Expired keys are swept
// from the request path once per window, so it owns no goroutine.
type RateLimiter struct {
	mu        sync.Mutex
	requests  map[string]*requestInfo
	limit     int
	window    time.Duration
	now       func() time.Time
	nextSweep time.Time
}

type requestInfo struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithNow(limit, window, time.Now)
}

func NewRateLimiterWithNow(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		requests:  make(map[string]*requestInfo),
		limit:     limit,
		window:    window,
		now:       now,
		nextSweep: now().Add(window),
	}
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	for key, info := range rl.requests {
		if now.After(info.resetAt) {
			delete(rl.requests, key)
		}
	}
	rl.nextSweep = now.Add(rl.window)
}

func (rl *RateLimiter) Allow(key string) bool {
	_, ok := rl.allow(key)
	return ok
}

// allow also reports how long until the key's window resets.
func (rl *RateLimiter) allow(key string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)
	info, exists := rl.requests[key]
	if !exists || now.After(info.resetAt) {
		rl.requests[key] = &requestInfo{count: 1, resetAt: now.Add(rl.window)}
		return 0, true
	}

	if info.count >= rl.limit {
		return info.resetAt.Sub(now), false
	}

	info.count++
	return 0, true
}

func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		wait, ok := rl.allow(c.ClientIP())
		if !ok {
			seconds := int(wait.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
