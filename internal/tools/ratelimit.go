package tools

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter caps tool executions per key over a sliding window. The
// key is the session ID, so a runaway agent burns its own budget
// without starving other sessions on the same worker.
type RateLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter returns a limiter allowing maxPerHour executions per
// key. maxPerHour <= 0 means unlimited and returns nil; callers treat a
// nil limiter as disabled.
func NewRateLimiter(maxPerHour int) *RateLimiter {
	if maxPerHour <= 0 {
		return nil
	}
	return &RateLimiter{
		history: make(map[string][]time.Time),
		max:     maxPerHour,
		window:  time.Hour,
		now:     time.Now,
	}
}

// Allow records one execution for key, or returns an error when the
// window is already full. The refusal is a normal tool error: the loop
// feeds it back to the model like any other failure.
func (rl *RateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	live := rl.history[key]
	for len(live) > 0 && live[0].Before(cutoff) {
		live = live[1:]
	}
	if len(live) >= rl.max {
		return fmt.Errorf("tool rate limit exceeded: %d executions per hour for session %s", rl.max, key)
	}
	rl.history[key] = append(live, rl.now())
	return nil
}

// Cleanup drops keys whose entire window has expired. Call it from a
// maintenance tick to keep idle sessions from pinning memory.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, entries := range rl.history {
		i := 0
		for i < len(entries) && entries[i].Before(cutoff) {
			i++
		}
		if i == len(entries) {
			delete(rl.history, key)
		} else {
			rl.history[key] = entries[i:]
		}
	}
}
