package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(t *testing.T, limit int) (*gin.Engine, *clock.FakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	srv := &Server{
		limiter: ratelimit.New(limit, clk),
		metrics: &HTTPMetrics{
			RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_rejections"}),
		},
	}

	r := gin.New()
	r.GET("/api/ping", srv.RateLimit(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r, clk
}

func doRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.RemoteAddr = "10.0.0.9:52100"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 3)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, nil).Code)
	}

	rec := doRequest(r, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimitWindowRecovers(t *testing.T) {
	r, clk := newRateLimitedRouter(t, 1)

	require.Equal(t, http.StatusOK, doRequest(r, nil).Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(r, nil).Code)

	clk.Advance(time.Minute)
	require.Equal(t, http.StatusOK, doRequest(r, nil).Code)
}

func TestRateLimitKeysOnFirstForwardedHop(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 1)

	require.Equal(t, http.StatusOK, doRequest(r, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 198.51.100.1",
	}).Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(r, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 198.51.100.9",
	}).Code)

	// A different first hop is a different client.
	require.Equal(t, http.StatusOK, doRequest(r, map[string]string{
		"X-Forwarded-For": "203.0.113.8, 198.51.100.1",
	}).Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 0)

	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, nil).Code)
	}
}

func TestClientKeyFallsBackToPeerAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.9:52100"

	require.Equal(t, "10.0.0.9", clientKey(c))

	c.Request.Header.Set("X-Forwarded-For", " 203.0.113.7 , 198.51.100.1")
	require.Equal(t, "203.0.113.7", clientKey(c))
}
