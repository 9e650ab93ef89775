package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func limitedRouter(rdb *redis.Client, max int, keyFn KeyFunc) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(rdb, max, time.Minute, keyFn))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/items", ok)
	r.POST("/items", ok)
	return r
}

func post(r http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items", nil))
	return w
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := limitedRouter(nil, 1, KeyByIdentity())
	for range 5 {
		w := post(r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := limitedRouter(rdb, 1, KeyByIdentity())
	for range 3 {
		assert.Equal(t, http.StatusOK, post(r).Code)
	}
}

func TestKeyByIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/items", nil)
	c.Request.RemoteAddr = "203.0.113.7:5555"

	keyFn := KeyByIdentity()
	assert.Equal(t, "rl:ip:203.0.113.7", keyFn(c))

	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), &domain.Identity{Email: "ayse@example.com"}))
	assert.Equal(t, "rl:account:ayse@example.com", keyFn(c))
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRateLimitWithRedis(t *testing.T) {
	rdb := startRedis(t)
	key := "rl:test:" + t.Name()
	r := limitedRouter(rdb, 2, func(*gin.Context) string { return key })

	w := post(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, post(r).Code)

	w = post(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"`+msgRateLimited+`"}`, w.Body.String())

	// Reads are never limited.
	get := httptest.NewRecorder()
	r.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusOK, get.Code)

	ttl, err := rdb.PTTL(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
