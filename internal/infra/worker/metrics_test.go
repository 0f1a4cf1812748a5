package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordValidationError("cron_schedule")
	m.RecordFallback("cron_schedule")
	m.SetFallbackActive(true)
	m.RecordLoadTimestamp()
	m.RecordJobRun("success", 3*time.Second)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	want := map[string]bool{
		"worker_config_load_timestamp":          false,
		"worker_config_validation_errors_total": false,
		"worker_config_fallbacks_total":         false,
		"worker_config_fallback_active":         false,
		"worker_job_runs_total":                 false,
		"worker_job_duration_seconds":           false,
		"worker_job_last_success_timestamp":     false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestMetrics_CountersAccumulate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordFallback("timezone")
	m.RecordFallback("timezone")
	m.RecordFallback("health_port")

	if got := testutil.ToFloat64(m.ConfigFallbacksTotal.WithLabelValues("timezone")); got != 2 {
		t.Errorf("timezone fallbacks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ConfigFallbacksTotal.WithLabelValues("health_port")); got != 1 {
		t.Errorf("health_port fallbacks = %v, want 1", got)
	}
}

func TestMetrics_FallbackActiveGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetFallbackActive(true)
	if got := testutil.ToFloat64(m.ConfigFallbackActive); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}

	m.SetFallbackActive(false)
	if got := testutil.ToFloat64(m.ConfigFallbackActive); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestMetrics_JobRunTracksLastSuccess(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordJobRun("failure", time.Second)
	if got := testutil.ToFloat64(m.JobLastSuccessTimestamp); got != 0 {
		t.Errorf("last success after failure = %v, want 0", got)
	}

	m.RecordJobRun("success", time.Second)
	if got := testutil.ToFloat64(m.JobLastSuccessTimestamp); got == 0 {
		t.Error("last success should be set after a successful run")
	}

	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure runs = %v, want 1", got)
	}
}
