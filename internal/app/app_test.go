package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/infrastructure/repository/cache"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func baseConfig() config.Config {
	return config.Config{
		AppEnv:         config.EnvDev,
		HTTPAddr:       ":0",
		NotifyProvider: config.NotifyProviderNone,
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	cfg := baseConfig()
	cfg.DBDriver = config.DBDriverMemory

	c, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	require.Nil(t, c.DB)
	require.Nil(t, c.Notifier)
	require.NotNil(t, c.Ingestion)
	require.NotNil(t, c.Match)

	srv, err := NewHTTPServer(cfg, c, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, ":0", srv.Addr)
}

func TestNew_SQLiteAutoMigrateWithCache(t *testing.T) {
	cfg := baseConfig()
	cfg.DBDriver = config.DBDriverSQLite
	cfg.DBURL = "file:" + filepath.Join(t.TempDir(), "tracker.db") + "?_foreign_keys=on"
	cfg.DBAutoMigrate = true
	cfg.CacheEnabled = true
	cfg.CacheTTL = time.Minute

	c, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	require.NotNil(t, c.DB)
	require.IsType(t, &cache.PlayerRepository{}, c.Players)

	ctx := context.Background()
	created, err := c.Players.Create(ctx, player.Player{UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5", Name: "Notch"})
	require.NoError(t, err)
	require.Positive(t, created.ID)

	items, err := c.StatsQuery.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestNewHTTPServer_EmptyAddr(t *testing.T) {
	cfg := baseConfig()
	cfg.DBDriver = config.DBDriverMemory
	c, err := New(cfg, logging.NewNop())
	require.NoError(t, err)

	cfg.HTTPAddr = ""
	_, err = NewHTTPServer(cfg, c, logging.NewNop())
	require.Error(t, err)
}

func TestNew_NotifierFromProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.DBDriver = config.DBDriverMemory
	cfg.NotifyProvider = config.NotifyProviderMatrix
	cfg.MatrixHomeserver = "https://matrix.example.org"
	cfg.MatrixRoomID = "!room:example.org"
	cfg.MatrixBotToken = "token"
	cfg.NotifyCooldown = time.Minute

	c, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	require.NotNil(t, c.Notifier)
}
