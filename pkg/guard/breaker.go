package guard

import (
	"sync"
	"time"
)

// breakerState represents the lifecycle state of a circuit breaker.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// circuitBreaker tracks consecutive failures for one service and opens the
// circuit once the failure count reaches the configured threshold. While
// open, calls are rejected until the cooldown elapses; the first call after
// the cooldown transitions to half-open and probes the service.
type circuitBreaker struct {
	mu sync.Mutex

	clock     Clock
	threshold int
	cooldown  time.Duration

	state        breakerState
	failures     int
	lastFailedAt time.Time
}

func newCircuitBreaker(clock Clock, threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		clock:     clock,
		threshold: threshold,
		cooldown:  cooldown,
		state:     breakerClosed,
	}
}

// allow reports whether a call may proceed. When the circuit is open and the
// cooldown has not elapsed, it returns false along with the remaining wait.
// Once the cooldown elapses the breaker moves to half-open and lets a probe
// call through.
func (b *circuitBreaker) allow() (ok bool, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != breakerOpen {
		return true, 0
	}

	elapsed := b.clock.Now().Sub(b.lastFailedAt)
	if elapsed < b.cooldown {
		return false, b.cooldown - elapsed
	}

	b.state = breakerHalfOpen
	return true, 0
}

// recordSuccess closes the circuit and resets the consecutive failure count.
func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = breakerClosed
}

// recordFailure increments the consecutive failure count and opens the
// circuit when the threshold is reached. A failed half-open probe reopens
// the circuit immediately and restarts the cooldown.
func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailedAt = b.clock.Now()

	if b.state == breakerHalfOpen || b.failures >= b.threshold {
		b.state = breakerOpen
	}
}

// snapshot returns the current state and failure count for reporting.
func (b *circuitBreaker) snapshot() (state breakerState, failures int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.failures
}
