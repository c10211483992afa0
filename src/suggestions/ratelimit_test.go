package suggestions

import (
	"testing"
	"time"
)

func TestRateLimiterThrottlesRepeatUse(t *testing.T) {
	rl := NewRateLimiter(50 * time.Millisecond)

	if !rl.CanUse("alice") {
		t.Fatal("first use should pass")
	}
	if rl.CanUse("alice") {
		t.Fatal("immediate reuse should be throttled")
	}
	if !rl.CanUse("bob") {
		t.Fatal("other users are independent")
	}

	if wait := rl.TimeUntilNext("alice"); wait <= 0 || wait > 50*time.Millisecond {
		t.Fatalf("unexpected wait %v", wait)
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.CanUse("alice") {
		t.Fatal("use after the limit window should pass")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10 * time.Millisecond)
	rl.CanUse("alice")

	time.Sleep(30 * time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	_, exists := rl.users["alice"]
	rl.mu.Unlock()
	if exists {
		t.Fatal("expired entries should be evicted")
	}
}
