package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, rps float64, burst int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerSecond: rps, Burst: burst, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	rl, now := newTestLimiter(t, 1, 2)

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.InDelta(t, time.Second.Seconds(), retry.Seconds(), 0.01)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other clients have their own bucket")

	*now = now.Add(time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	assert.Equal(t, Metrics{TotalHits: 1, ClientCount: 2}, rl.GetMetrics())
}

func TestLimiter_CleanupEvictsIdleClients(t *testing.T) {
	rl, now := newTestLimiter(t, 1, 1)
	rl.Allow("1.2.3.4")
	*now = now.Add(5 * time.Minute)
	rl.Allow("5.6.7.8")

	*now = now.Add(6 * time.Minute)
	rl.cleanupStaleEntries()
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		if got := RetryAfterSeconds(tt.in); got != tt.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMiddleware_OnlyLimitsMutations(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	do := func(method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/api/transactions", nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rec := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
	}
}
