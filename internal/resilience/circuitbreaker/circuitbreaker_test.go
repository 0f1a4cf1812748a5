package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

// testConfig trips after two observed calls that both failed, and recovers
// fast enough for a unit test.
func testConfig() Config {
	return Config{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
}

func fail(cb *CircuitBreaker) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, errors.New("service down")
	})
	return err
}

func succeed(cb *CircuitBreaker) (interface{}, error) {
	return cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
}

func TestExecutePassesThroughResult(t *testing.T) {
	cb := New(testConfig())

	got, err := succeed(cb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %v, want ok", got)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestExecutePassesThroughError(t *testing.T) {
	cb := New(testConfig())

	if err := fail(cb); err == nil || err.Error() != "service down" {
		t.Errorf("error = %v, want the function's own error", err)
	}
	// A single failure is below MinRequests and must not trip the circuit.
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestTripsOpenAfterThreshold(t *testing.T) {
	cb := New(testConfig())

	for range 2 {
		_ = fail(cb)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open after repeated failures", cb.State())
	}

	_, err := succeed(cb)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState while open", err)
	}
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	cfg := testConfig()
	cb := New(cfg)

	for range 2 {
		_ = fail(cb)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("precondition: breaker should be open, got %v", cb.State())
	}

	time.Sleep(cfg.Timeout + 10*time.Millisecond)

	// First probe after the timeout runs half-open; success closes the circuit.
	if _, err := succeed(cb); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.State())
	}
}

func TestStaysClosedBelowMinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MinRequests = 10
	cb := New(cfg)

	for range 5 {
		_ = fail(cb)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed until MinRequests calls observed", cb.State())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test")
	if cfg.Name != "test" {
		t.Errorf("Name = %q, want test", cfg.Name)
	}
	if cfg.FailureThreshold <= 0 || cfg.FailureThreshold > 1 {
		t.Errorf("FailureThreshold = %v, want a ratio in (0, 1]", cfg.FailureThreshold)
	}
	if cfg.MinRequests == 0 {
		t.Error("MinRequests must be positive or a single failure trips the circuit")
	}
}

func TestServicePresets(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"telegram-api", TelegramAPIConfig()},
		{"text-model", TextModelConfig()},
		{"image-model", ImageModelConfig()},
		{"calendarific", CalendarificConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.name {
				t.Errorf("Name = %q, want %q", tt.cfg.Name, tt.name)
			}
			if tt.cfg.Timeout <= 0 {
				t.Error("Timeout must be positive")
			}
		})
	}

	if ImageModelConfig().Timeout <= TelegramAPIConfig().Timeout {
		t.Error("image model circuit should stay open longer than telegram's")
	}
}
