package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Errorf("attempt over limit should be blocked")
	}
	// Other clients are unaffected.
	if !rl.allow("10.0.0.2") {
		t.Errorf("separate client should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	if !rl.allow("10.0.0.1") {
		t.Fatalf("first attempt should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Fatalf("second attempt should be blocked")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.allow("10.0.0.1") {
		t.Errorf("attempt after window should be allowed")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	rl.allow("10.0.0.1")
	rl.reset("10.0.0.1")
	if !rl.allow("10.0.0.1") {
		t.Errorf("attempt after reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if got := clientIP(r); got != "192.0.2.10" {
		t.Errorf("clientIP = %q, want 192.0.2.10", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 192.0.2.10")
	if got := clientIP(r); got != "203.0.113.5" {
		t.Errorf("clientIP with forwarded header = %q, want 203.0.113.5", got)
	}
}
