package guard

import (
	"fmt"
	"time"
)

// DenyReason identifies why an admission check denied a call.
type DenyReason int

const (
	// ReasonNone means the call was admitted.
	ReasonNone DenyReason = iota

	// ReasonCircuitOpen means the service's circuit breaker is open.
	ReasonCircuitOpen

	// ReasonGlobalLimit means the per-service global window is exhausted.
	ReasonGlobalLimit

	// ReasonCallerLimit means the per-caller window is exhausted.
	ReasonCallerLimit
)

// String returns a string representation of the deny reason.
func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCircuitOpen:
		return "circuit_open"
	case ReasonGlobalLimit:
		return "global_limit"
	case ReasonCallerLimit:
		return "caller_limit"
	default:
		return "unknown"
	}
}

// RateLimitedError is returned when admission is denied by a rate window.
// The call is recoverable by waiting; the guard never retries it
// automatically.
type RateLimitedError struct {
	Service    string
	Reason     DenyReason
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("service %q rate limited (%s), retry after %s",
		e.Service, e.Reason, e.RetryAfter.Round(time.Second))
}

// CircuitOpenError is returned when admission is denied because the
// service's circuit breaker is open. RetryAfter is the remaining cooldown.
type CircuitOpenError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("service %q circuit open, retry after %s",
		e.Service, e.RetryAfter.Round(time.Second))
}

// TimeoutError is returned when an operation exceeded its deadline.
// Timeouts are terminal; the guard never retries them.
type TimeoutError struct {
	Service string
	Limit   time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("service %q call timed out after %s (limit %s)",
		e.Service, e.Elapsed.Round(time.Millisecond), e.Limit)
}

// ExhaustedRetriesError wraps the last underlying cause after the configured
// retry budget was spent.
type ExhaustedRetriesError struct {
	Service  string
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("service %q failed after %d attempts: %v",
		e.Service, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Err
}
