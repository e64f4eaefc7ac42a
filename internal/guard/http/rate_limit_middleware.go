package http

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/order-guard/internal/httputil"
)

// SlidingWindowLimiter admits at most max requests per trailing window.
// State is process-local and resets on restart; a restart briefly relaxes the
// limit, which is an accepted tradeoff. The clock is injectable for tests.
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	window     time.Duration
	max        int
	clock      func() time.Time
	timestamps []time.Time
}

// NewSlidingWindowLimiter creates a limiter admitting max requests per window.
func NewSlidingWindowLimiter(window time.Duration, max int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		window: window,
		max:    max,
		clock:  time.Now,
	}
}

// NewSlidingWindowLimiterWithClock creates a limiter with a custom clock.
func NewSlidingWindowLimiterWithClock(
	window time.Duration,
	max int,
	clock func() time.Time,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		window: window,
		max:    max,
		clock:  clock,
	}
}

// Allow evicts timestamps older than the window and admits the request if
// capacity remains. Rejected requests are not recorded, so they do not count
// against the limit.
func (l *SlidingWindowLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.window)

	evicted := 0
	for evicted < len(l.timestamps) && l.timestamps[evicted].Before(cutoff) {
		evicted++
	}
	l.timestamps = l.timestamps[evicted:]

	if len(l.timestamps) >= l.max {
		return false
	}

	l.timestamps = append(l.timestamps, now)
	return true
}

// RateLimitMiddleware enforces the sliding window on webhook deliveries.
// It runs after signature verification, so only authenticated senders consume
// capacity.
func RateLimitMiddleware(limiter *SlidingWindowLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.Warn("webhook rate limit exceeded",
				slog.String("remote_addr", c.ClientIP()),
			)
			httputil.HandleRateLimitedGin(c, "Too many webhook deliveries. Please retry later.")
			return
		}

		c.Next()
	}
}
