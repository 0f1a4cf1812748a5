// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track the daily post generation pipeline
var (
	// PipelineRunsTotal counts pipeline runs by outcome
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"outcome"}, // outcome: success, degraded, failure
	)

	// PipelineStageDuration measures time spent in each pipeline stage
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"stage"},
	)

	// AssemblyDegradedTotal counts artifacts built from a fallback tier
	AssemblyDegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assembly_degraded_total",
			Help: "Total number of artifacts assembled from a fallback tier",
		},
		[]string{"tier"}, // tier: simplified, static
	)
)

// Delivery metrics track publication to the channel
var (
	// PostsPublishedTotal counts published posts by kind
	PostsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Total number of posts published to the channel",
		},
		[]string{"kind"}, // kind: single, multipart, photo
	)

	// PostPartsPublished measures how many parts a published post needed
	PostPartsPublished = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "post_parts_published",
			Help:    "Number of parts per published post",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	// DeliveryErrorsTotal counts delivery failures by error kind
	DeliveryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_errors_total",
			Help: "Total number of delivery failures",
		},
		[]string{"kind"}, // kind: rate_limit, client, server, network
	)

	// DeliveryDuration measures time to deliver a post including all parts
	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "delivery_duration_seconds",
			Help:    "Time taken to deliver a post",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Pending post metrics track the review queue
var (
	// PendingPostsTotal tracks the number of posts awaiting review
	PendingPostsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_posts_total",
			Help: "Number of posts awaiting review",
		},
	)

	// PendingTransitionsTotal counts lifecycle transitions by target state
	PendingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pending_transitions_total",
			Help: "Total number of pending post lifecycle transitions",
		},
		[]string{"to"},
	)
)

// RecordStageDuration records the duration of a named pipeline stage
func RecordStageDuration(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
