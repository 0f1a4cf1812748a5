package metrics

import "time"

// RecordPipelineRun records the outcome of a full pipeline run.
// Outcome should be "success", "degraded", or "failure".
func RecordPipelineRun(outcome string) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordDegradedAssembly records an artifact built from a fallback tier.
// Tier should be "simplified" or "static".
func RecordDegradedAssembly(tier string) {
	AssemblyDegradedTotal.WithLabelValues(tier).Inc()
}

// RecordPostPublished records a successful publication.
func RecordPostPublished(kind string, parts int, duration time.Duration) {
	PostsPublishedTotal.WithLabelValues(kind).Inc()
	PostPartsPublished.Observe(float64(parts))
	DeliveryDuration.Observe(duration.Seconds())
}

// RecordDeliveryError records a delivery failure by kind.
func RecordDeliveryError(kind string) {
	DeliveryErrorsTotal.WithLabelValues(kind).Inc()
}

// UpdatePendingPosts updates the gauge of posts awaiting review.
// This gauge should be updated after every store mutation.
func UpdatePendingPosts(count int) {
	PendingPostsTotal.Set(float64(count))
}

// RecordTransition records a lifecycle transition to the given state.
func RecordTransition(to string) {
	PendingTransitionsTotal.WithLabelValues(to).Inc()
}
