package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/blockfront-stats/tracker/external/blockfront"
	"github.com/blockfront-stats/tracker/external/mojang"
	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	"github.com/blockfront-stats/tracker/internal/infrastructure/notify"
	"github.com/blockfront-stats/tracker/internal/infrastructure/repository/cache"
	"github.com/blockfront-stats/tracker/internal/infrastructure/repository/memory"
	"github.com/blockfront-stats/tracker/internal/infrastructure/repository/sqlstore"
	"github.com/blockfront-stats/tracker/internal/interfaces/httpapi"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/resilience"
	"github.com/blockfront-stats/tracker/internal/usecase"
	"github.com/jmoiron/sqlx"
)

const notifierDrainTimeout = 5 * time.Second

// Container holds the wired dependencies shared by the api and poller binaries.
type Container struct {
	DB       *sqlx.DB
	Notifier *notify.Notifier

	Players player.Repository
	Stats   playerstats.Repository
	Cloud   cloudstats.Repository

	Ingestion  *usecase.IngestionService
	StatsQuery *usecase.StatsQueryService
	Tracking   *usecase.TrackingService
	Match      *usecase.MatchStatusService
}

func New(cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{}
	if err := c.initStores(cfg, logger); err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Notifier = notifier

	var alerter blockfront.Alerter
	if notifier != nil {
		alerter = notifier
	}
	client := blockfront.NewClient(blockfront.ClientConfig{
		BaseURL:  cfg.BlockFrontBaseURL,
		Timeout:  cfg.BlockFrontTimeout,
		BulkMode: cfg.BlockFrontBulkMode,
		Logger:   logger,
		Alerter:  alerter,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.BlockFrontCircuitEnabled,
			FailureThreshold: cfg.BlockFrontCircuitFailureCount,
			OpenTimeout:      cfg.BlockFrontCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.BlockFrontCircuitHalfOpenMaxReq,
		},
	})
	resolver := mojang.NewResolver(mojang.ResolverConfig{
		BaseURL: cfg.MojangBaseURL,
		Timeout: cfg.MojangTimeout,
		Logger:  logger,
	})

	c.Ingestion = usecase.NewIngestionService(client, c.Players, c.Stats, c.Cloud, cfg.BlockFrontBatchSize, logger)
	c.StatsQuery = usecase.NewStatsQueryService(c.Players, c.Stats, c.Cloud)
	c.Tracking = usecase.NewTrackingService(resolver, c.Players, logger)
	c.Match = usecase.NewMatchStatusService(client, logger)
	return c, nil
}

func (c *Container) initStores(cfg config.Config, logger *logging.Logger) error {
	switch cfg.DBDriver {
	case config.DBDriverMemory:
		players := memory.NewPlayerRepository()
		c.Players = players
		c.Stats = memory.NewPlayerStatsRepository(players)
		c.Cloud = memory.NewCloudStatsRepository()
		logger.Warn("using in-memory store, data is lost on restart")
	case config.DBDriverPostgres, config.DBDriverSQLite:
		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		c.DB = db
		c.Players = sqlstore.NewPlayerRepository(db)
		c.Stats = sqlstore.NewPlayerStatsRepository(db)
		c.Cloud = sqlstore.NewCloudStatsRepository(db)
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	if cfg.CacheEnabled {
		c.Players = cache.NewPlayerRepository(c.Players, cfg.CacheTTL)
		c.Cloud = cache.NewCloudStatsRepository(c.Cloud, cfg.CacheTTL)
		logger.Info("repository cache enabled", "ttl", cfg.CacheTTL.String())
	}
	return nil
}

func newNotifier(cfg config.Config, logger *logging.Logger) (*notify.Notifier, error) {
	var (
		sink notify.Sink
		err  error
	)
	switch cfg.NotifyProvider {
	case config.NotifyProviderMatrix:
		sink, err = notify.NewMatrixSink(notify.MatrixConfig{
			Homeserver: cfg.MatrixHomeserver,
			RoomID:     cfg.MatrixRoomID,
			Token:      cfg.MatrixBotToken,
		})
	case config.NotifyProviderDiscord:
		sink, err = notify.NewDiscordSink(notify.DiscordConfig{
			WebhookID:    cfg.DiscordWebhookID,
			WebhookToken: cfg.DiscordWebhookToken,
		})
	default:
		logger.Info("notifications disabled", "provider", cfg.NotifyProvider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configure %s notifications: %w", cfg.NotifyProvider, err)
	}

	notifier, err := notify.NewNotifier(sink, notify.Config{
		Gate:    notify.NewCooldown(cfg.NotifyCooldown),
		Timeout: cfg.NotifyTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("notifications enabled", "provider", cfg.NotifyProvider, "cooldown", cfg.NotifyCooldown.String())
	return notifier, nil
}

// Close drains pending notifications and releases the database.
func (c *Container) Close() error {
	var firstErr error
	if err := c.Notifier.Close(notifierDrainTimeout); err != nil {
		firstErr = err
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewHTTPServer(cfg config.Config, c *Container, logger *logging.Logger) (*http.Server, error) {
	handler := httpapi.NewHandler(c.StatsQuery, c.Tracking, c.Match, c.Ingestion, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
