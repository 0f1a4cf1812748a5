// Package retry implements bounded exponential backoff for the external
// services the posting pipeline talks to. Callers classify an HTTP failure
// by returning *HTTPError; everything else is judged by IsRetryable.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config controls how WithBackoff spaces its attempts.
type Config struct {
	// MaxAttempts caps the total number of calls, including the first one.
	MaxAttempts int

	// InitialDelay is the wait between the first failure and the second call.
	InitialDelay time.Duration

	// MaxDelay caps the wait regardless of how far the backoff has grown.
	MaxDelay time.Duration

	// Multiplier scales the wait after every failed attempt.
	Multiplier float64

	// JitterFraction randomizes each wait upward by at most this fraction.
	JitterFraction float64
}

// DefaultConfig is the base preset: three calls, one second growing to
// thirty, with a little jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// TelegramAPIConfig suits Bot API delivery. Delivery is the last step of the
// pipeline so it gets the most patience: brief flood-waits and network
// hiccups must not lose a post.
func TelegramAPIConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 5
	return cfg
}

// HolidaysAPIConfig suits Calendarific lookups. The post renders fine
// without holidays, so give up quickly instead of delaying assembly.
func HolidaysAPIConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	cfg.InitialDelay = 500 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second
	return cfg
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error, or
// cfg.MaxAttempts calls have failed. The wait between calls grows by
// cfg.Multiplier up to cfg.MaxDelay, with random jitter on top. A canceled
// ctx interrupts the wait and returns ctx.Err().
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	wait := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				slog.Info("call recovered",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(err) {
			slog.Warn("permanent error, not retrying",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}

		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, err)
		}

		sleep := jittered(wait, cfg.JitterFraction)
		slog.Warn("transient failure, backing off",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("wait", sleep),
			slog.Any("error", err))

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		wait = time.Duration(float64(wait) * cfg.Multiplier)
		if wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}
	}
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Context errors and client-side HTTP errors are permanent; timeouts,
// connection-level failures, throttling and server errors are transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return retryableStatus(httpErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ETIMEDOUT,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	default:
		return code >= 500 && code < 600
	}
}

// HTTPError carries a response status so IsRetryable can classify it.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
}

// jittered stretches the wait by a random amount so that callers hitting the
// same outage do not retry in lockstep.
func jittered(wait time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return wait
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	// #nosec G404 -- backoff jitter does not need cryptographic randomness.
	return wait + time.Duration(rand.Float64()*fraction*float64(wait))
}
