// Package circuitbreaker wraps github.com/sony/gobreaker behind per-service
// presets. Each infra client owns one breaker so a misbehaving API stops
// receiving calls without affecting the rest of the pipeline.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes a single breaker.
type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRequests limits probe calls while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts periodically.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold trips the breaker once this failure ratio is reached.
	FailureThreshold float64

	// MinRequests is how many calls must be observed before the ratio counts.
	MinRequests uint32
}

// DefaultConfig is the base preset the per-service configs start from.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// TelegramAPIConfig suits Bot API delivery. Recovery probes quickly; a stuck
// breaker would skip a scheduled post.
func TelegramAPIConfig() Config {
	return DefaultConfig("telegram-api")
}

// TextModelConfig suits chat completion calls.
func TextModelConfig() Config {
	return DefaultConfig("text-model")
}

// ImageModelConfig suits image generation. Generation is slow and billed per
// call, so the circuit probes less often and stays open longer.
func ImageModelConfig() Config {
	cfg := DefaultConfig("image-model")
	cfg.MaxRequests = 2
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	cfg.MinRequests = 4
	return cfg
}

// CalendarificConfig suits holiday lookups. Lookups are cached per date, so
// an open circuit costs at most one degraded post per day.
func CalendarificConfig() Config {
	cfg := DefaultConfig("calendarific")
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 300 * time.Second
	cfg.FailureThreshold = 0.7
	return cfg
}

// CircuitBreaker is a named gobreaker instance.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New builds a breaker from cfg. State transitions are logged at Warn level
// so an open circuit is visible without metrics.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: tripOn(cfg),
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

func tripOn(cfg Config) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < cfg.MinRequests {
			return false
		}
		ratio := float64(counts.TotalFailures) / float64(counts.Requests)
		return ratio >= cfg.FailureThreshold
	}
}

// Execute runs fn through the breaker. While the circuit is open it fails
// fast with gobreaker.ErrOpenState instead of calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}
