package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("attempt past the limit should be blocked")
	}
	if !l.Allow("other") {
		t.Error("a different key has its own window")
	}
}

func TestLimiter_ResetClearsWindow(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt should be blocked")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt after reset should be allowed")
	}
}

func TestLoginLimiter_UsernameIsCaseInsensitive(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	r := httptest.NewRequest("POST", "/auth/login", nil)

	if ok, _ := ll.Check(r, "Ravi"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, _ := ll.Check(r, "RAVI"); !ok {
		t.Fatal("second attempt should pass")
	}
	if ok, reason := ll.Check(r, "ravi"); ok || reason == "" {
		t.Error("third attempt for the same account should be blocked with a reason")
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("got %q, want 203.0.113.9", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := ClientIP(r); got == "" {
		t.Error("expected a fallback IP from RemoteAddr")
	}
}
