// Package notify delivers best-effort operator alerts to a chat room.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/time/rate"
)

const (
	defaultCooldown = 60 * time.Second
	defaultTimeout  = 10 * time.Second
	defaultWorkers  = 2
	maxMessageLen   = 1800
)

// Sink sends one message to a chat provider.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// Gate decides whether an alert may be sent now.
type Gate interface {
	Allow() bool
}

// Cooldown lets one alert through per window.
type Cooldown struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = defaultCooldown
	}
	return &Cooldown{
		limiter: rate.NewLimiter(rate.Every(window), 1),
		now:     time.Now,
	}
}

func (c *Cooldown) Allow() bool {
	return c.limiter.AllowN(c.now(), 1)
}

type Config struct {
	Gate    Gate
	Timeout time.Duration
	Workers int
	Logger  *logging.Logger
}

// Notifier hands messages to a small non-blocking worker pool. Callers never
// wait for delivery and a failing or panicking sink is only logged.
type Notifier struct {
	sink    Sink
	gate    Gate
	timeout time.Duration
	pool    *ants.Pool
	logger  *logging.Logger
}

func NewNotifier(sink Sink, cfg Config) (*Notifier, error) {
	if sink == nil {
		return nil, fmt.Errorf("notification sink is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	gate := cfg.Gate
	if gate == nil {
		gate = NewCooldown(defaultCooldown)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create notification worker pool: %w", err)
	}

	return &Notifier{
		sink:    sink,
		gate:    gate,
		timeout: timeout,
		pool:    pool,
		logger:  logger.Named("notify"),
	}, nil
}

// Alert queues message unless the cooldown is active or every worker is busy.
func (n *Notifier) Alert(ctx context.Context, message string) {
	n.Notify(ctx, message)
}

// Notify reports whether message was queued.
func (n *Notifier) Notify(ctx context.Context, message string) bool {
	if n == nil {
		return false
	}
	message = truncate(strings.TrimSpace(message))
	if message == "" {
		return false
	}
	if !n.gate.Allow() {
		n.logger.DebugContext(ctx, "notification suppressed by cooldown")
		return false
	}

	detached := context.WithoutCancel(ctx)
	if err := n.pool.Submit(func() { n.deliver(detached, message) }); err != nil {
		n.logger.WarnContext(ctx, "notification dropped", "error", err)
		return false
	}
	return true
}

func (n *Notifier) deliver(ctx context.Context, message string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var catcher panics.Catcher
	var sendErr error
	catcher.Try(func() {
		sendErr = n.sink.Send(ctx, message)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		n.logger.ErrorContext(ctx, "notification sink panicked", "error", recovered.AsError())
		return
	}
	if sendErr != nil {
		n.logger.WarnContext(ctx, "failed to send notification", "error", sendErr)
		return
	}
	n.logger.InfoContext(ctx, "notification sent")
}

// Close waits up to timeout for queued deliveries.
func (n *Notifier) Close(timeout time.Duration) error {
	if n == nil {
		return nil
	}
	return n.pool.ReleaseTimeout(timeout)
}

func truncate(message string) string {
	if len(message) <= maxMessageLen {
		return message
	}
	return message[:maxMessageLen] + "..."
}
