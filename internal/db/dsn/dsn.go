// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pharmadesk/pharmadesk/internal/config"
)

// Create builds the Data Source Name of the configured gorm engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(cfg.DB)
	case config.EngineSQLite:
		return SQLite(cfg.DB)
	default:
		return MySQL(cfg.DB)
	}
}

// MySQL builds a go-sql-driver/mysql DSN.
func MySQL(db config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// Postgres builds a pgx keyword/value DSN.
func Postgres(db config.DB) string {
	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
		sslMode,
	)

	if db.Extras != "" {
		out += " " + db.Extras
	}

	return out
}

// PostgresURI builds a postgres:// connection URI as expected by the gofiber postgres storage.
func PostgresURI(db config.DB) string {
	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}

	return u.String()
}

// SQLite builds a DSN for a database file with foreign keys enabled.
func SQLite(db config.DB) string {
	pragma := "_pragma=foreign_keys(1)"

	if strings.Contains(db.Path, "?") {
		return db.Path + "&" + pragma
	}

	return db.Path + "?" + pragma
}
