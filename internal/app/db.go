package app

import (
	"fmt"

	"github.com/blockfront-stats/tracker/internal/config"
	"github.com/blockfront-stats/tracker/internal/infrastructure/repository/sqlstore"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// openDB connects to the configured SQL store, applying migrations first when
// DB_AUTO_MIGRATE is set.
func openDB(cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	if cfg.DBAutoMigrate {
		if err := sqlstore.MigrateUp(cfg.DBDriver, cfg.DBURL); err != nil {
			return nil, fmt.Errorf("auto migrate %s: %w", cfg.DBDriver, err)
		}
		logger.Info("database migrations applied", "driver", cfg.DBDriver)
	}

	db, err := otelsqlx.Open(cfg.DBDriver, cfg.DBURL,
		otelsql.WithDBSystem(dbSystem(cfg.DBDriver)),
		otelsql.WithDBName(dbNameFromURL(cfg.DBDriver, cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DBDriverSQLite {
		// sqlite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
	}

	logger.Info("database connected", "driver", cfg.DBDriver, "db_name", dbNameFromURL(cfg.DBDriver, cfg.DBURL))
	return db, nil
}

func dbSystem(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}
