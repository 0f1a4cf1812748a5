// Package metrics defines the worker's Prometheus metrics.
//
// Three groups cover the post lifecycle: pipeline metrics (runs, stage
// durations, degraded assemblies), delivery metrics (published posts,
// parts, errors), and the pending post queue gauge. Everything registers
// with the default registry through promauto and is served on /metrics.
//
// Example usage:
//
//	func publish(post *entity.PendingPost) {
//	    start := time.Now()
//	    // ... deliver all parts ...
//	    metrics.RecordPostPublished("multipart", len(post.Parts), time.Since(start))
//	}
package metrics
