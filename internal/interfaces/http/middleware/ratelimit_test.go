package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to the limit", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		assert.True(t, rl.Allow("client"))
		assert.True(t, rl.Allow("client"))
		assert.True(t, rl.Allow("client"))
		assert.False(t, rl.Allow("client"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("window reset restores the budget", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)

		assert.True(t, rl.Allow("client"))
		assert.False(t, rl.Allow("client"))
		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.Allow("client"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(NewRateLimiter(2, time.Minute)), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w
	}

	first := get()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, get().Code)

	blocked := get()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Contains(t, blocked.Body.String(), "ERR_RATE_LIMITED")
}
