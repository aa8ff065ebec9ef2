package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blockfront-stats/tracker/db"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// NewMigrator returns a migrator over the embedded migrations for driver.
// dsn is the same connection string handed to sqlx.
func NewMigrator(driver, dsn string) (*migrate.Migrate, error) {
	files, err := db.Migrations(driver)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations for %s: %w", driver, err)
	}
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations for %s: %w", driver, err)
	}

	databaseURL, err := MigrationDatabaseURL(driver, dsn)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration. No pending change is not an error.
func MigrateUp(driver, dsn string) error {
	m, err := NewMigrator(driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrationDatabaseURL converts a driver DSN into the URL form golang-migrate expects.
func MigrationDatabaseURL(driver, dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	switch driver {
	case DriverPostgres:
		return dsn, nil
	case DriverSQLite:
		if strings.HasPrefix(dsn, "sqlite3://") {
			return dsn, nil
		}
		return "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}
