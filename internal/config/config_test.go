package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BlockFrontBaseURL != "https://blockfrontapi.vuis.dev" {
		t.Fatalf("unexpected BlockFrontBaseURL: %q", cfg.BlockFrontBaseURL)
	}
	if cfg.BlockFrontTimeout != 15*time.Second {
		t.Fatalf("unexpected BlockFrontTimeout: %s", cfg.BlockFrontTimeout)
	}
	if cfg.BlockFrontBatchSize != 50 {
		t.Fatalf("unexpected BlockFrontBatchSize: %d", cfg.BlockFrontBatchSize)
	}
	if cfg.BlockFrontBulkMode != BulkModeText {
		t.Fatalf("unexpected BlockFrontBulkMode: %q", cfg.BlockFrontBulkMode)
	}
	if cfg.NotifyProvider != NotifyProviderNone {
		t.Fatalf("unexpected NotifyProvider: %q", cfg.NotifyProvider)
	}
	if cfg.NotifyCooldown != time.Minute {
		t.Fatalf("unexpected NotifyCooldown: %s", cfg.NotifyCooldown)
	}
	if cfg.MatrixHomeserver != "https://matrix.org" {
		t.Fatalf("unexpected MatrixHomeserver: %q", cfg.MatrixHomeserver)
	}
	if cfg.DBDriver != DBDriverSQLite {
		t.Fatalf("unexpected DBDriver: %q", cfg.DBDriver)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Fatalf("unexpected PollInterval: %s", cfg.PollInterval)
	}
	if !cfg.DBAutoMigrate {
		t.Fatalf("expected sqlite to auto migrate by default")
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected swagger enabled outside prod")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_CORSAndSwaggerParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DB_DRIVER", DBDriverPostgres)
	t.Setenv("DB_URL", "postgres://localhost/blockfront")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected swagger disabled in prod by default")
	}
	if cfg.DBAutoMigrate {
		t.Fatalf("expected postgres not to auto migrate by default")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "uptrace-dsn='https://token@api.uptrace.dev'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_DBDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported DB_DRIVER")
	}
}

func TestLoad_BlockFrontConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BLOCKFRONT_BASE_URL", "http://localhost:9000/")
	t.Setenv("BLOCKFRONT_TIMEOUT", "3s")
	t.Setenv("BLOCKFRONT_BULK_MODE", "JSON")
	t.Setenv("BLOCKFRONT_BATCH_SIZE", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BlockFrontBaseURL != "http://localhost:9000" {
		t.Fatalf("unexpected BlockFrontBaseURL: %q", cfg.BlockFrontBaseURL)
	}
	if cfg.BlockFrontTimeout != 3*time.Second {
		t.Fatalf("unexpected BlockFrontTimeout: %s", cfg.BlockFrontTimeout)
	}
	if cfg.BlockFrontBulkMode != BulkModeJSON {
		t.Fatalf("unexpected BlockFrontBulkMode: %q", cfg.BlockFrontBulkMode)
	}
	if cfg.BlockFrontBatchSize != 20 {
		t.Fatalf("unexpected BlockFrontBatchSize: %d", cfg.BlockFrontBatchSize)
	}
}

func TestLoad_BlockFrontBatchSizeMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BLOCKFRONT_BATCH_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BLOCKFRONT_BATCH_SIZE=0")
	}
}

func TestLoad_NotifyProviderRequiresCredentials(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("NOTIFY_PROVIDER", NotifyProviderMatrix)
	t.Setenv("MATRIX_ROOM_ID", "!room:matrix.org")
	t.Setenv("MATRIX_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when NOTIFY_PROVIDER=matrix without MATRIX_BOT_TOKEN")
	}

	t.Setenv("NOTIFY_PROVIDER", NotifyProviderDiscord)
	t.Setenv("DISCORD_WEBHOOK_ID", "123")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.NotifyProvider != NotifyProviderDiscord {
		t.Fatalf("unexpected NotifyProvider: %q", cfg.NotifyProvider)
	}
}

func TestLoad_NotifyCooldownMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("NOTIFY_COOLDOWN", "-1s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative NOTIFY_COOLDOWN")
	}
}

func TestLoad_QStashRetriesMustBeNonNegative(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_RETRIES", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative QSTASH_RETRIES")
	}
}
