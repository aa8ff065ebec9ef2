// Package db embeds the schema migrations for every supported driver.
package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrations embed.FS

// Migrations returns the migration files for driver ("postgres" or "sqlite3").
func Migrations(driver string) (fs.FS, error) {
	return fs.Sub(migrations, "migrations/"+driver)
}
