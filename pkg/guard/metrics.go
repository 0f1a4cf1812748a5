package guard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives observations about guard decisions and call outcomes.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveAdmission records the result of an admission check.
	ObserveAdmission(service string, allowed bool, reason DenyReason)

	// ObserveOutcome records a finished call with its duration.
	ObserveOutcome(service string, success bool, elapsed time.Duration)

	// ObserveTimeout records a call that exceeded its time limit.
	ObserveTimeout(service string)

	// ObserveRetry records a retry attempt after a transient failure.
	ObserveRetry(service string)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAdmission(string, bool, DenyReason)      {}
func (NoopMetrics) ObserveOutcome(string, bool, time.Duration)     {}
func (NoopMetrics) ObserveTimeout(string)                          {}
func (NoopMetrics) ObserveRetry(string)                            {}

// PromMetrics exports guard observations as Prometheus metrics.
type PromMetrics struct {
	admissions *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	timeouts   *prometheus.CounterVec
	retries    *prometheus.CounterVec
}

// NewPromMetrics registers guard metrics on the given registerer.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_admissions_total",
			Help: "Admission check results by service and deny reason.",
		}, []string{"service", "result", "reason"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_calls_total",
			Help: "Finished guarded calls by service and outcome.",
		}, []string{"service", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guard_call_duration_seconds",
			Help:    "Duration of guarded calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_timeouts_total",
			Help: "Guarded calls that exceeded their time limit.",
		}, []string{"service"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guard_retries_total",
			Help: "Retry attempts after transient failures.",
		}, []string{"service"}),
	}
	reg.MustRegister(m.admissions, m.outcomes, m.durations, m.timeouts, m.retries)
	return m
}

func (m *PromMetrics) ObserveAdmission(service string, allowed bool, reason DenyReason) {
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.admissions.WithLabelValues(service, result, reason.String()).Inc()
}

func (m *PromMetrics) ObserveOutcome(service string, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.outcomes.WithLabelValues(service, outcome).Inc()
	m.durations.WithLabelValues(service).Observe(elapsed.Seconds())
}

func (m *PromMetrics) ObserveTimeout(service string) {
	m.timeouts.WithLabelValues(service).Inc()
}

func (m *PromMetrics) ObserveRetry(service string) {
	m.retries.WithLabelValues(service).Inc()
}
