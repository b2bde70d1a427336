package signal

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewSignalRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("a") {
		t.Error("attempt over the limit should be denied")
	}
	// Another key has its own budget.
	if !rl.Allow("b") {
		t.Error("independent key should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewSignalRateLimiter(1, 10*time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("first attempt should be allowed")
	}
	if rl.Allow("a") {
		t.Fatal("second attempt inside the window should be denied")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("a") {
		t.Error("attempt after the window should be allowed again")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewSignalRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}
