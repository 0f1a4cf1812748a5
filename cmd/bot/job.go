package main

import (
	"context"
	"log/slog"
	"time"

	"morning-post/internal/infra/transport"
	workerPkg "morning-post/internal/infra/worker"
	"morning-post/internal/observability/logging"
	"morning-post/internal/observability/metrics"
	"morning-post/internal/usecase/assemble"
	"morning-post/internal/usecase/post"
)

// postJob assembles and delivers one morning post per scheduled run.
type postJob struct {
	assembler   *assemble.Service
	coordinator *post.Coordinator
	transport   transport.Transport
	metrics     *workerPkg.Metrics
	logger      *slog.Logger
	timeout     time.Duration
	location    *time.Location
	autoPublish bool
	adminChat   string
}

// Run executes one post cycle. It never returns an error to the scheduler:
// a failed run is logged and recorded, and the next run starts fresh.
func (j *postJob) Run(ctx context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	logger := logging.WithRunID(j.logger.With(slog.String("job", "morning-post")))
	logger.Info("post job started")

	artifact, err := j.assembler.Assemble(ctx, time.Now().In(j.location), assemble.Options{CallerID: "scheduler"})
	if err != nil {
		j.fail(logger, "assembly failed", err, start)
		return
	}

	pending, err := j.coordinator.Create(artifact)
	if err != nil {
		j.fail(logger, "failed to store pending post", err, start)
		return
	}

	if !j.autoPublish {
		j.holdForReview(ctx, logger, pending.ID)
		j.succeed(logger, artifact.Degraded, start)
		return
	}

	if err := j.coordinator.Publish(ctx, pending.ID); err != nil {
		// The draft survives, so a manual publish can still go out.
		j.fail(logger, "publish failed", err, start)
		return
	}

	j.succeed(logger, artifact.Degraded, start)
}

// holdForReview sends the preview to the admin chat instead of publishing.
// The pending post stays in the store awaiting a manual decision.
func (j *postJob) holdForReview(ctx context.Context, logger *slog.Logger, id string) {
	logger.Info("post held for review", slog.String("post_id", id))
	if j.adminChat == "" {
		logger.Warn("ADMIN_CHAT_ID not set, preview not delivered", slog.String("post_id", id))
		return
	}

	preview, err := j.coordinator.Preview(id)
	if err != nil {
		logger.Error("failed to build preview", slog.String("post_id", id), slog.Any("error", err))
		return
	}
	if _, err := j.transport.SendText(ctx, j.adminChat, preview); err != nil {
		logger.Error("failed to deliver preview", slog.String("post_id", id), slog.Any("error", err))
	}
}

func (j *postJob) succeed(logger *slog.Logger, degraded bool, start time.Time) {
	outcome := "success"
	if degraded {
		outcome = "degraded"
	}
	metrics.RecordPipelineRun(outcome)
	j.metrics.RecordJobRun("success", time.Since(start))
	logger.Info("post job completed",
		slog.String("outcome", outcome),
		slog.Duration("elapsed", time.Since(start)))
}

func (j *postJob) fail(logger *slog.Logger, msg string, err error, start time.Time) {
	metrics.RecordPipelineRun("failure")
	j.metrics.RecordJobRun("failure", time.Since(start))
	logger.Error(msg, slog.Any("error", err), slog.Duration("elapsed", time.Since(start)))
}
