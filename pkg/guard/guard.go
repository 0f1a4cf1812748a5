// Package guard provides admission control and failure isolation for calls
// to external services. Each named service gets a sliding-window rate
// limiter and a consecutive-failure circuit breaker; Execute wraps an
// operation with admission, a hard time limit, and retry with exponential
// backoff.
package guard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Default limits applied when Config leaves a field zero.
const (
	DefaultGlobalLimit      = 20
	DefaultGlobalWindow     = time.Minute
	DefaultCallerLimit      = 50
	DefaultCallerWindow     = time.Hour
	DefaultFailureThreshold = 5
	DefaultCooldown         = 300 * time.Second

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Config holds the shared limits for all services in a Registry.
//
// Fields:
//   - GlobalLimit/GlobalWindow: per-service request ceiling across all callers
//   - CallerLimit/CallerWindow: per-caller request ceiling within one service
//   - FailureThreshold: consecutive failures before the circuit opens
//   - Cooldown: how long an open circuit rejects calls before probing
type Config struct {
	GlobalLimit      int
	GlobalWindow     time.Duration
	CallerLimit      int
	CallerWindow     time.Duration
	FailureThreshold int
	Cooldown         time.Duration

	Clock   Clock
	Metrics Metrics
	Logger  *slog.Logger
}

func (c *Config) withDefaults() {
	if c.GlobalLimit <= 0 {
		c.GlobalLimit = DefaultGlobalLimit
	}
	if c.GlobalWindow <= 0 {
		c.GlobalWindow = DefaultGlobalWindow
	}
	if c.CallerLimit <= 0 {
		c.CallerLimit = DefaultCallerLimit
	}
	if c.CallerWindow <= 0 {
		c.CallerWindow = DefaultCallerWindow
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.Clock == nil {
		c.Clock = &SystemClock{}
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetrics{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Reason     DenyReason
	RetryAfter time.Duration
}

// Registry manages per-service guard state. Services are created lazily on
// first use; all methods are safe for concurrent use.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	services map[string]*serviceGuard
}

type serviceGuard struct {
	counter *slidingCounter
	breaker *circuitBreaker
}

// NewRegistry builds a Registry with defaults filled in for any zero fields.
func NewRegistry(cfg Config) *Registry {
	cfg.withDefaults()
	return &Registry{
		cfg:      cfg,
		services: make(map[string]*serviceGuard),
	}
}

func (r *Registry) guardFor(service string) *serviceGuard {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.services[service]
	if !ok {
		g = &serviceGuard{
			counter: newSlidingCounter(r.cfg.Clock, r.cfg.GlobalLimit, r.cfg.GlobalWindow, r.cfg.CallerLimit, r.cfg.CallerWindow),
			breaker: newCircuitBreaker(r.cfg.Clock, r.cfg.FailureThreshold, r.cfg.Cooldown),
		}
		r.services[service] = g
	}
	return g
}

// CheckAdmission decides whether a call to service may proceed. The circuit
// breaker is consulted first; an open circuit denies without consuming rate
// budget. An allowed call is counted immediately, so admission and counting
// are a single atomic step.
//
// callerID may be empty, in which case only the global window applies.
//
// A denial never feeds back into the circuit breaker.
func (r *Registry) CheckAdmission(service, callerID string) Decision {
	g := r.guardFor(service)

	if ok, retryAfter := g.breaker.allow(); !ok {
		r.cfg.Metrics.ObserveAdmission(service, false, ReasonCircuitOpen)
		r.cfg.Logger.Warn("call rejected, circuit open",
			slog.String("service", service),
			slog.Duration("retry_after", retryAfter))
		return Decision{Allowed: false, Reason: ReasonCircuitOpen, RetryAfter: retryAfter}
	}

	allowed, reason, retryAfter := g.counter.checkAndAdd(callerID)
	if !allowed {
		r.cfg.Metrics.ObserveAdmission(service, false, reason)
		r.cfg.Logger.Warn("call rejected, rate limited",
			slog.String("service", service),
			slog.String("caller_id", callerID),
			slog.String("reason", reason.String()),
			slog.Duration("retry_after", retryAfter))
		return Decision{Allowed: false, Reason: reason, RetryAfter: retryAfter}
	}

	r.cfg.Metrics.ObserveAdmission(service, true, ReasonNone)
	return Decision{Allowed: true, Reason: ReasonNone}
}

// RecordSuccess reports a successful call, closing the service's circuit.
func (r *Registry) RecordSuccess(service string) {
	r.guardFor(service).breaker.recordSuccess()
}

// RecordFailure reports a failed call against the service's circuit breaker.
func (r *Registry) RecordFailure(service string) {
	r.guardFor(service).breaker.recordFailure()
}

// Stats is a point-in-time snapshot of one service's guard state.
type Stats struct {
	Service             string
	State               string
	ConsecutiveFailures int
	RequestsInWindow    int
}

// Stats returns a snapshot for every known service, sorted by name.
func (r *Registry) Stats() []Stats {
	r.mu.Lock()
	names := make([]string, 0, len(r.services))
	guards := make(map[string]*serviceGuard, len(r.services))
	for name, g := range r.services {
		names = append(names, name)
		guards[name] = g
	}
	r.mu.Unlock()

	sort.Strings(names)

	out := make([]Stats, 0, len(names))
	for _, name := range names {
		g := guards[name]
		state, failures := g.breaker.snapshot()
		out = append(out, Stats{
			Service:             name,
			State:               state.String(),
			ConsecutiveFailures: failures,
			RequestsInWindow:    g.counter.globalCount(),
		})
	}
	return out
}

// Policy controls how Execute runs a single guarded operation.
type Policy struct {
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the total number of attempts. Zero means DefaultMaxRetries.
	MaxRetries int

	// BaseDelay is the first backoff delay; it doubles per attempt.
	BaseDelay time.Duration

	// CallerID attributes the call to a per-caller rate window. Optional.
	CallerID string
}

func (p *Policy) withDefaults() {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
}

// Execute runs op under the registry's protection for the named service.
//
// Admission is checked once, before the first attempt; a denial returns a
// *RateLimitedError or *CircuitOpenError without invoking op and without
// affecting the circuit breaker. Each attempt is bounded by pol.Timeout; an
// attempt that exceeds it returns a *TimeoutError immediately and is never
// retried. Other failures are retried up to pol.MaxRetries attempts with
// exponentially growing delays, after which a *ExhaustedRetriesError wraps
// the last error. The circuit breaker sees one success or one failure per
// Execute call, not per attempt.
func Execute[T any](ctx context.Context, reg *Registry, service string, pol Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	pol.withDefaults()

	dec := reg.CheckAdmission(service, pol.CallerID)
	if !dec.Allowed {
		if dec.Reason == ReasonCircuitOpen {
			return zero, &CircuitOpenError{Service: service, RetryAfter: dec.RetryAfter}
		}
		return zero, &RateLimitedError{Service: service, Reason: dec.Reason, RetryAfter: dec.RetryAfter}
	}

	g := reg.guardFor(service)
	start := reg.cfg.Clock.Now()

	var lastErr error
	for attempt := 1; attempt <= pol.MaxRetries; attempt++ {
		result, err, timedOut := runWithTimeout(ctx, pol.Timeout, op)
		if timedOut {
			g.breaker.recordFailure()
			reg.cfg.Metrics.ObserveTimeout(service)
			reg.cfg.Metrics.ObserveOutcome(service, false, reg.cfg.Clock.Now().Sub(start))
			return zero, &TimeoutError{Service: service, Limit: pol.Timeout, Elapsed: reg.cfg.Clock.Now().Sub(start)}
		}
		if err == nil {
			g.breaker.recordSuccess()
			reg.cfg.Metrics.ObserveOutcome(service, true, reg.cfg.Clock.Now().Sub(start))
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		lastErr = err
		if attempt < pol.MaxRetries {
			delay := pol.BaseDelay << (attempt - 1)
			reg.cfg.Logger.Debug("retrying guarded call",
				slog.String("service", service),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
			reg.cfg.Metrics.ObserveRetry(service)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	g.breaker.recordFailure()
	reg.cfg.Metrics.ObserveOutcome(service, false, reg.cfg.Clock.Now().Sub(start))
	return zero, &ExhaustedRetriesError{Service: service, Attempts: pol.MaxRetries, Err: lastErr}
}

// runWithTimeout runs op with a deadline. The goroutine running op is not
// interrupted beyond context cancellation; op must honor its context.
func runWithTimeout[T any](ctx context.Context, limit time.Duration, op func(context.Context) (T, error)) (result T, err error, timedOut bool) {
	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type outcome struct {
		result T
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, e := op(tctx)
		done <- outcome{result: r, err: e}
	}()

	select {
	case out := <-done:
		return out.result, out.err, false
	case <-tctx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err(), false
		}
		return zero, tctx.Err(), true
	}
}
