package app

import (
	"context"
	"time"

	"github.com/blockfront-stats/tracker/external/jobqueue"
	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/resilience"
)

const IngestJobPath = "/v1/internal/jobs/ingest"

type JobPublisher interface {
	Publish(ctx context.Context, path string, payload any, opts jobqueue.PublishOptions) error
}

func NewJobPublisher(cfg config.Config, logger *logging.Logger) (*jobqueue.Publisher, error) {
	return jobqueue.NewPublisher(jobqueue.Config{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   resilience.DefaultCircuitBreakerConfig(),
		Logger:           logger,
	})
}

// EnqueueIngest schedules one ingest job through the queue. Jobs for the same
// poll slot share a deduplication id, so repeated calls within an interval
// collapse into one cycle.
func EnqueueIngest(ctx context.Context, publisher JobPublisher, interval time.Duration, now time.Time) error {
	return publisher.Publish(ctx, IngestJobPath, nil, jobqueue.PublishOptions{
		DeduplicationID: ingestDeduplicationID(interval, now),
	})
}

func ingestDeduplicationID(interval time.Duration, now time.Time) string {
	slot := now.UTC()
	if interval > 0 {
		slot = slot.Truncate(interval)
	}
	return "ingest-" + slot.Format("20060102T150405Z")
}
