package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limited(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()
	return RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(handler http.Handler, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 5, Window: time.Minute})

		for i := range 5 {
			w := hit(h, "192.168.1.1:12345", nil)
			assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
			assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
			assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
		}
	})

	t.Run("over limit", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 2, Window: time.Minute})

		for range 2 {
			require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:9999", nil).Code)
		}

		w := hit(h, "10.0.0.1:9999", nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "rate limit exceeded", body["message"])
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})

		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1234", nil).Code)
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1234", nil).Code)
		// Same IP with another source port still shares the key.
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5678", nil).Code)
	})

	t.Run("custom key func", func(t *testing.T) {
		h := limited(t, RateLimitConfig{
			Max:    1,
			Window: time.Minute,
			KeyFunc: func(r *http.Request) string {
				return r.Header.Get("X-API-Key")
			},
		})

		assert.Equal(t, http.StatusOK, hit(h, "1.1.1.1:1", map[string]string{"X-API-Key": "key-a"}).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "2.2.2.2:2", map[string]string{"X-API-Key": "key-a"}).Code)
		assert.Equal(t, http.StatusOK, hit(h, "1.1.1.1:1", map[string]string{"X-API-Key": "key-b"}).Code)
	})

	t.Run("forwarded-for wins over remote addr", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})
		fwd := map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}

		assert.Equal(t, http.StatusOK, hit(h, "192.168.1.1:4444", fwd).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.168.1.2:5555", fwd).Code)
	})
}

func TestLimiterEvict(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Minute})

	now := time.Now()
	l.take("stale", now.Add(-3*time.Minute))
	l.take("fresh", now)
	require.Len(t, l.buckets, 2)

	l.evict(now)
	assert.NotContains(t, l.buckets, "stale")
	assert.Contains(t, l.buckets, "fresh")
}
