package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestRateLimit tests per-IP limits and window resets.
func TestRateLimit(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(2, &logger)
	defer rl.Stop()

	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := RateLimit(rl)(okHandler())
	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for i := range 2 {
		if w := do("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := do("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}

	// Other clients have their own budget.
	if w := do("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other ip: status = %d, want 200", w.Code)
	}

	// The window resets after a minute.
	now = now.Add(time.Minute)
	if w := do("10.0.0.1"); w.Code != http.StatusOK {
		t.Errorf("after reset: status = %d, want 200", w.Code)
	}
}

// TestRateLimiterStop tests that Stop is idempotent.
func TestRateLimiterStop(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	rl.Stop()
	rl.Stop()
}
