package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for the worker component: configuration
// fallback tracking plus cron job execution tracking.
type Metrics struct {
	// ConfigLoadTimestamp records the Unix timestamp of the last config load.
	ConfigLoadTimestamp prometheus.Gauge

	// ConfigValidationErrorsTotal counts validation failures by field.
	ConfigValidationErrorsTotal *prometheus.CounterVec

	// ConfigFallbacksTotal counts applied fallbacks by field.
	ConfigFallbacksTotal *prometheus.CounterVec

	// ConfigFallbackActive is 1 while any fallback value is in effect.
	ConfigFallbackActive prometheus.Gauge

	// JobRunsTotal counts scheduled job runs by status (success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures scheduled job execution time.
	JobDurationSeconds prometheus.Histogram

	// JobLastSuccessTimestamp records the Unix timestamp of the last
	// successful run. Alerting on its age catches silently missed posts.
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewMetrics creates worker metrics registered on the given registerer.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConfigLoadTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_load_timestamp",
			Help: "Unix timestamp of the last configuration load",
		}),
		ConfigValidationErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_validation_errors_total",
			Help: "Total configuration validation errors by field",
		}, []string{"field"}),
		ConfigFallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Total configuration fallbacks applied by field",
		}, []string{"field"}),
		ConfigFallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_fallback_active",
			Help: "1 if any configuration fallback is active, 0 otherwise",
		}),
		JobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total scheduled job runs by status (success/failure)",
		}, []string{"status"}),
		JobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job execution in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		JobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled job",
		}),
	}
}

// RecordValidationError increments the validation error counter for a field.
func (m *Metrics) RecordValidationError(field string) {
	m.ConfigValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback increments the fallback counter for a field.
func (m *Metrics) RecordFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive sets the fallback gauge.
func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.ConfigFallbackActive.Set(1)
	} else {
		m.ConfigFallbackActive.Set(0)
	}
}

// RecordLoadTimestamp marks the time of a configuration load.
func (m *Metrics) RecordLoadTimestamp() {
	m.ConfigLoadTimestamp.SetToCurrentTime()
}

// RecordJobRun records one scheduled job run with its outcome and duration.
func (m *Metrics) RecordJobRun(status string, duration time.Duration) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
	m.JobDurationSeconds.Observe(duration.Seconds())
	if status == "success" {
		m.JobLastSuccessTimestamp.SetToCurrentTime()
	}
}
