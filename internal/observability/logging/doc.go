// Package logging configures the process-wide slog logger.
//
// The worker logs JSON to stdout; LOG_LEVEL picks the level. Every
// scheduled pipeline run is tagged with its own run_id so entries from
// overlapping runs can be told apart.
//
// Example usage:
//
//	func main() {
//	    slog.SetDefault(logging.NewLogger())
//	}
//
//	func runPipeline(logger *slog.Logger) {
//	    logger = logging.WithRunID(logger)
//	    logger.Info("starting daily post")
//	}
package logging
