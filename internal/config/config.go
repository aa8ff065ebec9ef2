package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite3"
	DBDriverMemory   = "memory"

	NotifyProviderNone    = "none"
	NotifyProviderMatrix  = "matrix"
	NotifyProviderDiscord = "discord"

	BulkModeText = "text"
	BulkModeJSON = "json"
)

// Config stores runtime configuration for the api, poller and migration binaries.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	SwaggerEnabled     bool
	CORSAllowedOrigins []string

	DBDriver      string
	DBURL         string
	DBAutoMigrate bool
	CacheEnabled  bool
	CacheTTL      time.Duration

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	BlockFrontBaseURL               string
	BlockFrontTimeout               time.Duration
	BlockFrontBulkMode              string
	BlockFrontBatchSize             int
	BlockFrontCircuitEnabled        bool
	BlockFrontCircuitFailureCount   int
	BlockFrontCircuitOpenTimeout    time.Duration
	BlockFrontCircuitHalfOpenMaxReq int

	MojangBaseURL string
	MojangTimeout time.Duration

	NotifyProvider      string
	NotifyCooldown      time.Duration
	NotifyTimeout       time.Duration
	MatrixHomeserver    string
	MatrixUserID        string
	MatrixRoomID        string
	MatrixBotToken      string
	DiscordWebhookID    string
	DiscordWebhookToken string

	PollInterval     time.Duration
	InternalJobToken string

	QStashBaseURL       string
	QStashToken         string
	QStashTargetBaseURL string
	QStashRetries       int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:              appEnv,
		ServiceName:         getEnv("APP_SERVICE_NAME", "blockfront-stats"),
		ServiceVersion:      getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:            getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:            logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:               strings.TrimSpace(getEnv("DB_URL", "file:blockfront.db?_foreign_keys=on")),
		BlockFrontBaseURL:   strings.TrimRight(strings.TrimSpace(getEnv("BLOCKFRONT_BASE_URL", "https://blockfrontapi.vuis.dev")), "/"),
		MojangBaseURL:       strings.TrimRight(strings.TrimSpace(getEnv("MOJANG_BASE_URL", "https://api.mojang.com")), "/"),
		MatrixHomeserver:    strings.TrimRight(strings.TrimSpace(getEnv("MATRIX_HOMESERVER", "https://matrix.org")), "/"),
		MatrixUserID:        strings.TrimSpace(getEnv("MATRIX_USER_ID", "")),
		MatrixRoomID:        strings.TrimSpace(getEnv("MATRIX_ROOM_ID", "")),
		MatrixBotToken:      strings.TrimSpace(getEnv("MATRIX_BOT_TOKEN", "")),
		DiscordWebhookID:    strings.TrimSpace(getEnv("DISCORD_WEBHOOK_ID", "")),
		DiscordWebhookToken: strings.TrimSpace(getEnv("DISCORD_WEBHOOK_TOKEN", "")),
		InternalJobToken:    strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		QStashBaseURL:       strings.TrimRight(strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")), "/"),
		QStashToken:         strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL: strings.TrimRight(strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")), "/"),
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DBDriverSQLite)))
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSQLite, DBDriverMemory:
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q: valid values are %s, %s, %s", cfg.DBDriver, DBDriverPostgres, DBDriverSQLite, DBDriverMemory)
	}
	if cfg.DBDriver != DBDriverMemory && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_DRIVER=%s", cfg.DBDriver)
	}

	cfg.DBAutoMigrate, err = strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", strconv.FormatBool(cfg.DBDriver == DBDriverSQLite)))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_AUTO_MIGRATE: %w", err)
	}

	cfg.SwaggerEnabled, err = strconv.ParseBool(getEnv("SWAGGER_ENABLED", strconv.FormatBool(appEnv != EnvProd)))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	if cfg.ReadTimeout, err = getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = getEnvAsPositiveDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}

	cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.BlockFrontTimeout, err = getEnvAsPositiveDuration("BLOCKFRONT_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	cfg.BlockFrontBulkMode = strings.ToLower(strings.TrimSpace(getEnv("BLOCKFRONT_BULK_MODE", BulkModeText)))
	if cfg.BlockFrontBulkMode != BulkModeText && cfg.BlockFrontBulkMode != BulkModeJSON {
		return Config{}, fmt.Errorf("invalid BLOCKFRONT_BULK_MODE %q: valid values are %s, %s", cfg.BlockFrontBulkMode, BulkModeText, BulkModeJSON)
	}
	cfg.BlockFrontBatchSize, err = getEnvAsInt("BLOCKFRONT_BATCH_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse BLOCKFRONT_BATCH_SIZE: %w", err)
	}
	if cfg.BlockFrontBatchSize < 1 {
		return Config{}, fmt.Errorf("BLOCKFRONT_BATCH_SIZE must be >= 1")
	}
	cfg.BlockFrontCircuitEnabled, err = strconv.ParseBool(getEnv("BLOCKFRONT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BLOCKFRONT_CIRCUIT_ENABLED: %w", err)
	}
	cfg.BlockFrontCircuitFailureCount, err = getEnvAsInt("BLOCKFRONT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse BLOCKFRONT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.BlockFrontCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("BLOCKFRONT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.BlockFrontCircuitOpenTimeout, err = getEnvAsPositiveDuration("BLOCKFRONT_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	cfg.BlockFrontCircuitHalfOpenMaxReq, err = getEnvAsInt("BLOCKFRONT_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse BLOCKFRONT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.BlockFrontCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("BLOCKFRONT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.MojangTimeout, err = getEnvAsPositiveDuration("MOJANG_TIMEOUT", "5s"); err != nil {
		return Config{}, err
	}

	cfg.NotifyProvider = strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_PROVIDER", NotifyProviderNone)))
	switch cfg.NotifyProvider {
	case NotifyProviderNone:
	case NotifyProviderMatrix:
		if cfg.MatrixRoomID == "" || cfg.MatrixBotToken == "" {
			return Config{}, fmt.Errorf("MATRIX_ROOM_ID and MATRIX_BOT_TOKEN are required when NOTIFY_PROVIDER=matrix")
		}
	case NotifyProviderDiscord:
		if cfg.DiscordWebhookID == "" || cfg.DiscordWebhookToken == "" {
			return Config{}, fmt.Errorf("DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN are required when NOTIFY_PROVIDER=discord")
		}
	default:
		return Config{}, fmt.Errorf("invalid NOTIFY_PROVIDER %q: valid values are %s, %s, %s", cfg.NotifyProvider, NotifyProviderNone, NotifyProviderMatrix, NotifyProviderDiscord)
	}
	if cfg.NotifyCooldown, err = getEnvAsPositiveDuration("NOTIFY_COOLDOWN", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.NotifyTimeout, err = getEnvAsPositiveDuration("NOTIFY_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	if cfg.PollInterval, err = getEnvAsPositiveDuration("POLL_INTERVAL", "5m"); err != nil {
		return Config{}, err
	}
	cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
