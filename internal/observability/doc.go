// Package observability groups the worker's logging, metrics, and tracing.
//
// The bot runs unattended once a day, so the only way to know whether a
// post went out degraded, late, or not at all is what these packages
// record:
//
//   - logging: JSON slog output with a run_id per scheduled run
//   - metrics: Prometheus counters and histograms for the pipeline,
//     delivery, and the pending post queue
//   - tracing: one OpenTelemetry trace per run with a span per stage
package observability
