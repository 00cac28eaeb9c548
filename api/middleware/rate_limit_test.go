package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeLimiterStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func runLimited(t *testing.T, handler http.Handler, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewRateLimitPolicy("register", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(okHandler())

	require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, runLimited(t, handler, "10.0.0.1").Code)

	// Counters are per IP.
	require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.2").Code)
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := &fakeLimiterStore{}
	policy := NewRateLimitPolicy("register", 0, 0)
	handler := RateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.1").Code)
	}
	require.Empty(t, store.counts)
}

func TestRateLimitStoreOutageFailsOpen(t *testing.T) {
	store := &fakeLimiterStore{err: errors.New("redis down")}
	policy := NewRateLimitPolicy("register", time.Minute, 1)
	handler := RateLimit(policy, store, nil)(okHandler())

	require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, runLimited(t, handler, "10.0.0.1").Code)
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	require.Equal(t, "192.0.2.9", clientIP(req))
}
