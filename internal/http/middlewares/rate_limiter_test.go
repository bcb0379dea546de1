package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, time.Minute, retry)

	// other clients have their own bucket
	ok, _, _ = l.Allow(ctx, "5.6.7.8")
	require.True(t, ok)

	now = now.Add(time.Minute + time.Second)
	ok, _, _ = l.Allow(ctx, "1.2.3.4")
	require.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RateLimit(NewMemoryLimiter(1, time.Minute), KeyByIP, nil))
	r.GET("/api/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "60", w.Header().Get("Retry-After"))
	require.Contains(t, w.Body.String(), `"rate_limited"`)
	require.Contains(t, w.Body.String(), `"message":"Too many requests. Please try again shortly."`)
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(failingLimiter{}, KeyByIP, nil))
	r.GET("/api/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

// needs a reachable redis, e.g. TEST_REDIS_ADDR=127.0.0.1:6379
func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	l := NewRedisLimiter(rdb, 2, 5*time.Second)
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, l.prefix+key) })

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, retry > 0 && retry <= 5*time.Second)
}
