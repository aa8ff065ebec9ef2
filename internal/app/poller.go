package app

import (
	"context"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/usecase"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (usecase.CycleResult, error)
}

// RunOnce runs a single cycle and logs its summary.
func RunOnce(ctx context.Context, runner CycleRunner, logger *logging.Logger) error {
	started := time.Now()
	result, err := runner.RunCycle(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "ingest cycle aborted", "duration_ms", time.Since(started).Milliseconds(), "error", err)
		return err
	}
	logger.InfoContext(ctx, "ingest cycle completed",
		"duration_ms", time.Since(started).Milliseconds(),
		"cloud_stat_id", result.CloudStatID,
		"tracked", result.TrackedIDs,
		"batches", result.Batches,
		"failed_batches", result.FailedBatches,
		"stored", result.Stored,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return nil
}

// RunLoop runs a cycle immediately and then on every tick until ctx is done.
// Cycles never overlap; ticks that fire while a cycle runs are dropped.
func RunLoop(ctx context.Context, runner CycleRunner, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = RunOnce(ctx, runner, logger)
		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
			continue
		}
		break
	}
	logger.Info("poller stopping", "reason", ctx.Err().Error())
}
