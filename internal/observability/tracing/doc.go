// Package tracing provides OpenTelemetry tracing integration.
//
// Each daily pipeline run produces one trace with a span per stage
// (holidays, text, image, render, deliver), so a slow or degraded post
// can be attributed to the stage that caused it.
//
// Example usage:
//
//	import "morning-post/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.InitProvider("morning-post")
//	    defer shutdown(context.Background())
//	}
//
//	func assemble(ctx context.Context) error {
//	    ctx, span := tracing.StartStage(ctx, "assemble")
//	    defer span.End()
//	    // ... assemble the post ...
//	}
package tracing
