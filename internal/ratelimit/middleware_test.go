package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func request(h http.Handler, remote, xff string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/convert", nil)
	req.RemoteAddr = remote
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestMiddlewareThrottles proves the second request inside the window gets 429
// and both decisions are recorded.
func TestMiddlewareThrottles(t *testing.T) {
	stats := NewMemoryStats()
	h := Middleware(Options{
		Store:               NewStore(0.001, 1),
		Stats:               stats,
		AddRateLimitHeaders: true,
	})(okHandler)

	first := request(h, "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "0.001", first.Header().Get("X-RateLimit-RPS"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Burst"))

	second := request(h, "10.0.0.1:5678", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	other := request(h, "10.0.0.2:1234", "")
	assert.Equal(t, http.StatusOK, other.Code)

	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, stats.Total())
	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, stats.Route("POST /convert"))
}

// TestMiddlewareOnReject proves a custom reject writer replaces the plain-text body
func TestMiddlewareOnReject(t *testing.T) {
	h := Middleware(Options{
		Store: NewStore(0.001, 1),
		OnReject: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"throttled"}`))
		},
	})(okHandler)

	request(h, "10.0.0.1:1", "")
	rec := request(h, "10.0.0.1:1", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"throttled"}`, rec.Body.String())
}

func TestMiddlewareWithoutStore(t *testing.T) {
	h := Middleware(Options{})(okHandler)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1", "").Code)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "192.0.2.7", ClientKey(false)(req))
	assert.Equal(t, "203.0.113.9", ClientKey(true)(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.7", ClientKey(true)(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientKey(false)(req))
}
