package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter is a per-IP sliding window.
type RateLimiter struct {
	rate     int
	interval time.Duration
	ips      map[string][]time.Time
	mu       sync.Mutex
}

func NewRateLimiter(rate int, interval int) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: time.Duration(interval) * time.Second,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

// StrictLimiter keeps one token bucket per client IP for login and signup.
type StrictLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

func NewStrictLimiter(every time.Duration, burst int) *StrictLimiter {
	return &StrictLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
		burst:    burst,
	}
}

func (sl *StrictLimiter) limiter(ip string) *rate.Limiter {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	l, ok := sl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Every(sl.every), sl.burst)
		sl.limiters[ip] = l
	}
	return l
}

func (sl *StrictLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many attempts, please wait a moment",
			})
			return
		}
		c.Next()
	}
}

// NewStrictRateLimiter allows 5 attempts per minute per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	return NewStrictLimiter(12*time.Second, 5).Limit()
}
