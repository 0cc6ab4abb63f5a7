package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Per-caller entries idle longer than this are pruned.
const callerIdleTTL = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-caller request budget plus a global ceiling
// protecting the model API quota. Callers are keyed by client IP.
type RateLimiter struct {
	mu        sync.Mutex
	callers   map[string]*callerLimiter
	perCaller rate.Limit
	burst     int
	system    *rate.Limiter
	lastPrune time.Time
}

func NewRateLimiter(perMinute, systemRPS int) *RateLimiter {
	return &RateLimiter{
		callers:   map[string]*callerLimiter{},
		perCaller: rate.Limit(float64(perMinute) / 60.0),
		burst:     perMinute,
		system:    rate.NewLimiter(rate.Limit(systemRPS), systemRPS),
		lastPrune: time.Now(),
	}
}

func (rl *RateLimiter) allow(caller string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastPrune) > callerIdleTTL {
		for key, entry := range rl.callers {
			if now.Sub(entry.lastSeen) > callerIdleTTL {
				delete(rl.callers, key)
			}
		}
		rl.lastPrune = now
	}

	entry, ok := rl.callers[caller]
	if !ok {
		entry = &callerLimiter{limiter: rate.NewLimiter(rl.perCaller, rl.burst)}
		rl.callers[caller] = entry
	}
	entry.lastSeen = now

	return entry.limiter.Allow() && rl.system.Allow()
}

// Middleware rejects requests over budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate limit exceeded",
				"message": "Too many requests. Please wait before trying again.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
