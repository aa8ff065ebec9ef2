package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/blockfront-stats/tracker/internal/app"
	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
)

func main() {
	mode := "run"
	if len(os.Args) > 1 {
		mode = strings.ToLower(strings.TrimSpace(os.Args[1]))
	}
	if mode != "run" && mode != "once" && mode != "enqueue" {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName+"-poller", "env", cfg.AppEnv)
	logging.SetDefault(logger)

	stopObservability, err := app.StartObservability(cfg, logger)
	if err != nil {
		logger.Error("start observability", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if mode == "enqueue" {
		exitCode := 0
		if err := enqueue(ctx, cfg, logger); err != nil {
			logger.Error("enqueue ingest job", "error", err)
			exitCode = 1
		}
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		stopObservability(shutdownCtx)
		cancel()
		_ = logger.Sync()
		os.Exit(exitCode)
	}

	container, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	switch mode {
	case "once":
		if err := app.RunOnce(ctx, container.Ingestion, logger); err != nil {
			exitCode = 1
		}
	default:
		logger.Info("poller starting", "interval", cfg.PollInterval.String())
		app.RunLoop(ctx, container.Ingestion, cfg.PollInterval, logger)
	}
	stop()

	if err := container.Close(); err != nil {
		logger.Warn("close app resources", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stopObservability(shutdownCtx)
	cancel()

	_ = logger.Sync()
	os.Exit(exitCode)
}

func enqueue(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	publisher, err := app.NewJobPublisher(cfg, logger)
	if err != nil {
		return err
	}
	return app.EnqueueIngest(ctx, publisher, cfg.PollInterval, time.Now())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s [run|once|enqueue]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "  run      poll every POLL_INTERVAL until interrupted (default)")
	fmt.Fprintln(os.Stderr, "  once     run a single ingestion cycle and exit")
	fmt.Fprintln(os.Stderr, "  enqueue  publish one ingest job to QStash for the api to run")
}
