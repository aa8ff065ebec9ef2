package app

import (
	"context"
	"time"

	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/observability"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
)

// StartObservability brings up tracing, profiling and pprof. The returned
// function stops all of them.
func StartObservability(cfg config.Config, logger *logging.Logger) (func(context.Context), error) {
	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, err
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, err
	}
	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		_ = stopProfiler()
		_ = shutdownTracing(context.Background())
		return nil, err
	}

	return func(ctx context.Context) {
		if err := observability.StopPprofServer(pprofServer, logger, 5*time.Second); err != nil {
			logger.Warn("stop pprof server failed", "error", err)
		}
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope failed", "error", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown uptrace failed", "error", err)
		}
	}, nil
}
