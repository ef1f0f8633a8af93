package tools

import (
	"testing"
	"time"
)

func TestNewRateLimiter_DisabledIsNil(t *testing.T) {
	for _, max := range []int{0, -5} {
		if rl := NewRateLimiter(max); rl != nil {
			t.Errorf("NewRateLimiter(%d) = %v, want nil", max, rl)
		}
	}
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(5)
	for i := 0; i < 5; i++ {
		if err := rl.Allow("sess-1"); err != nil {
			t.Errorf("execution %d should be allowed: %v", i, err)
		}
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(3)
	for i := 0; i < 3; i++ {
		if err := rl.Allow("sess-1"); err != nil {
			t.Fatalf("execution %d should be allowed: %v", i, err)
		}
	}
	if err := rl.Allow("sess-1"); err == nil {
		t.Error("4th execution should be blocked")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(2)
	rl.Allow("sess-1")
	rl.Allow("sess-1")

	if err := rl.Allow("sess-1"); err == nil {
		t.Error("sess-1 should be blocked")
	}
	if err := rl.Allow("sess-2"); err != nil {
		t.Errorf("sess-2 should be allowed: %v", err)
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return now }

	rl.Allow("sess-1")
	rl.Allow("sess-1")
	if err := rl.Allow("sess-1"); err == nil {
		t.Fatal("should be blocked at limit")
	}

	now = now.Add(rl.window + time.Second)
	if err := rl.Allow("sess-1"); err != nil {
		t.Errorf("should be allowed after window expiry: %v", err)
	}
}

func TestRateLimiter_CleanupDropsExpiredKeys(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(5)
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(rl.window + time.Second)
	rl.Allow("fresh")

	rl.Cleanup()
	if _, ok := rl.history["stale"]; ok {
		t.Error("stale key should be dropped")
	}
	if _, ok := rl.history["fresh"]; !ok {
		t.Error("fresh key should survive")
	}
}
