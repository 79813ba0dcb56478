package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/groups/join", nil)
		req = req.WithContext(WithUser(req.Context(), User{ID: userID}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("u1"); code != http.StatusNoContent {
			t.Fatalf("call %d: expected 204, got %d", i, code)
		}
	}
	if code := call("u1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := call("u2"); code != http.StatusNoContent {
		t.Fatalf("expected other user unaffected, got %d", code)
	}

	now = now.Add(time.Minute)
	if code := call("u1"); code != http.StatusNoContent {
		t.Fatalf("expected token refilled after a minute, got %d", code)
	}
}

func TestRateLimiterDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(60, 1, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(11 * time.Minute)
	rl.allow("b")

	if _, ok := rl.limiters["a"]; ok {
		t.Fatalf("expected idle bucket removed")
	}
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	handler := NewCORS([]string{"http://app.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/groups/me", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://app.test" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/groups/me", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow origin for foreign origin")
	}

	wildcard := NewCORS([]string{"*"})(http.NotFoundHandler())
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://any.test")
	rec = httptest.NewRecorder()
	wildcard.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://any.test" {
		t.Fatalf("expected wildcard to echo origin")
	}
}
