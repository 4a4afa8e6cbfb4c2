// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	defer limiter.Stop()
	handler := limiter.Limit(okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler(w, requestFrom("203.0.113.1"))
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler(w, requestFrom("203.0.113.1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 over budget, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// Other clients have their own bucket
	w = httptest.NewRecorder()
	handler(w, requestFrom("203.0.113.2"))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for another client, got %d", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0)
	if limiter != nil {
		t.Fatal("Expected nil limiter when disabled")
	}
	limiter.Stop()

	handler := limiter.Limit(okHandler)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		handler(w, requestFrom("203.0.113.1"))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200 with limiting disabled, got %d", w.Code)
		}
	}
}

func TestRateLimiterPrune(t *testing.T) {
	limiter := NewRateLimiter(5)
	defer limiter.Stop()

	start := time.Now()
	limiter.now = func() time.Time { return start }
	limiter.get("203.0.113.1")

	limiter.now = func() time.Time { return start.Add(limiterIdle + time.Second) }
	limiter.get("203.0.113.2")
	limiter.prune()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.clients["203.0.113.1"]; ok {
		t.Error("Expected idle client to be pruned")
	}
	if _, ok := limiter.clients["203.0.113.2"]; !ok {
		t.Error("Expected recent client to be kept")
	}
}
