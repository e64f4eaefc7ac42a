package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowLimiter(t *testing.T) {
	t.Run("admits up to max requests and rejects the next", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 3, func() time.Time { return now })

		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())
	})

	t.Run("readmits after the window elapses", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 2, func() time.Time { return now })

		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())

		now = now.Add(time.Minute + time.Second)
		assert.True(t, limiter.Allow())
	})

	t.Run("slides instead of resetting", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 2, func() time.Time { return now })

		assert.True(t, limiter.Allow())
		now = now.Add(30 * time.Second)
		assert.True(t, limiter.Allow())

		// 61s after the first request: only the first slot has expired.
		now = now.Add(31 * time.Second)
		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())
	})

	t.Run("rejected requests do not consume capacity", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 1, func() time.Time { return now })

		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())
		assert.False(t, limiter.Allow())

		// The lone admitted request expires; the rejections left no trace.
		now = now.Add(2 * time.Minute)
		assert.True(t, limiter.Allow())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns exactly one 429 for max plus one requests", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 10, func() time.Time { return now })

		router := gin.New()
		router.POST("/webhook", RateLimitMiddleware(limiter, logger), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "received"})
		})

		var rejected int
		for i := 0; i < 11; i++ {
			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code == http.StatusTooManyRequests {
				rejected++
				assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
			} else {
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}
		assert.Equal(t, 1, rejected)
	})

	t.Run("admits again once the window elapses", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewSlidingWindowLimiterWithClock(time.Minute, 1, func() time.Time { return now })

		router := gin.New()
		router.POST("/webhook", RateLimitMiddleware(limiter, logger), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "received"})
		})

		do := func() int {
			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, do())
		assert.Equal(t, http.StatusTooManyRequests, do())

		now = now.Add(time.Minute + time.Second)
		assert.Equal(t, http.StatusOK, do())
	})
}
