package middleware

import (
	"testing"
	"time"
)

func TestOTPRateLimiterFirstRequestAllowed(t *testing.T) {
	l := NewOTPRateLimiter()
	allowed, wait, msg := l.Check(1)
	if !allowed || wait != 0 || msg != "" {
		t.Fatalf("first request must pass, got allowed=%v wait=%v msg=%q", allowed, wait, msg)
	}
}

func TestOTPRateLimiterSecondRequestWithinMinuteBlocked(t *testing.T) {
	l := NewOTPRateLimiter()
	l.Check(2)
	allowed, wait, _ := l.Check(2)
	if allowed {
		t.Fatalf("immediate second request must be blocked")
	}
	if wait <= 0 || wait > time.Minute {
		t.Fatalf("expected wait up to 1 minute, got %v", wait)
	}
}

func TestOTPRateLimiterSecondRequestAfterWindow(t *testing.T) {
	l := NewOTPRateLimiter()
	l.Check(3)
	// Backdate the burst start past the 1 minute spacing.
	l.mu.Lock()
	l.records[3].FirstReqAt = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	allowed, _, _ := l.Check(3)
	if !allowed {
		t.Fatalf("second request after the spacing window must pass")
	}
}

func TestOTPRateLimiterIsPerUser(t *testing.T) {
	l := NewOTPRateLimiter()
	l.Check(4)
	if allowed, _, _ := l.Check(5); !allowed {
		t.Fatalf("another seller must not be throttled by the first one")
	}
}
