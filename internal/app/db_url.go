package app

import (
	"net/url"
	"path"
	"strings"

	"github.com/blockfront-stats/tracker/internal/config"
)

// dbNameFromURL extracts the database name reported on DB spans.
func dbNameFromURL(driver, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if driver == config.DBDriverSQLite {
		return sqliteDBName(trimmed)
	}

	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

func sqliteDBName(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	if dsn == "" || dsn == ":memory:" {
		return dsn
	}
	return path.Base(dsn)
}
