package guard

import (
	"sync"
	"time"
)

// slidingCounter tracks request timestamps for one service across two
// sliding windows: a global per-service window and a per-caller window.
//
// The check and the add happen inside a single lock acquisition to prevent
// TOCTOU (Time-of-Check to Time-of-Use) races between concurrent callers of
// the same service. Timestamps older than their window are purged before
// every count; counts are a same-process approximation, not exact.
type slidingCounter struct {
	mu sync.Mutex

	clock Clock

	globalLimit  int
	globalWindow time.Duration
	callerLimit  int
	callerWindow time.Duration

	global  []time.Time
	callers map[string][]time.Time
}

func newSlidingCounter(clock Clock, globalLimit int, globalWindow time.Duration, callerLimit int, callerWindow time.Duration) *slidingCounter {
	return &slidingCounter{
		clock:        clock,
		globalLimit:  globalLimit,
		globalWindow: globalWindow,
		callerLimit:  callerLimit,
		callerWindow: callerWindow,
		callers:      make(map[string][]time.Time),
	}
}

// checkAndAdd atomically checks both windows and, when the call is within
// limits, records its timestamp in each applicable window.
//
// Returns:
//   - allowed: true if the call was within limits and recorded
//   - reason: which window denied the call (ReasonNone when allowed)
//   - retryAfter: time until the oldest blocking timestamp leaves its window
func (c *slidingCounter) checkAndAdd(callerID string) (allowed bool, reason DenyReason, retryAfter time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	c.global = purge(c.global, now.Add(-c.globalWindow))
	if len(c.global) >= c.globalLimit {
		return false, ReasonGlobalLimit, c.global[0].Add(c.globalWindow).Sub(now)
	}

	if callerID != "" {
		perCaller := purge(c.callers[callerID], now.Add(-c.callerWindow))
		if len(perCaller) == 0 {
			delete(c.callers, callerID)
		} else {
			c.callers[callerID] = perCaller
		}
		if len(perCaller) >= c.callerLimit {
			return false, ReasonCallerLimit, perCaller[0].Add(c.callerWindow).Sub(now)
		}
		c.callers[callerID] = append(perCaller, now)
	}

	c.global = append(c.global, now)
	return true, ReasonNone, 0
}

// globalCount returns the number of requests in the current global window.
func (c *slidingCounter) globalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.global = purge(c.global, c.clock.Now().Add(-c.globalWindow))
	return len(c.global)
}

// purge drops all timestamps at or before cutoff. Timestamps are appended in
// order, so the surviving suffix starts at the first entry after cutoff.
func purge(ts []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(ts) && !ts[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return ts
	}
	return append(ts[:0:0], ts[idx:]...)
}
