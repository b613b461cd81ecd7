package config

// Supported gorm engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Engines lists every supported value of DB.GormEngine.
var Engines = []string{EngineMySQL, EnginePostgres, EngineSQLite} //nolint:gochecknoglobals

// DB holds the database configuration settings.
type DB struct {
	Extras     string // extra DSN parameters (mysql query string, postgres key=value pairs)
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // mysql, postgres or sqlite
	Path       string // database file, sqlite only
	SSLMode    string // postgres only
	LogLevel   string // gorm log level: silent, error, warn, info

	MaxOpenConns int
	MaxIdleConns int
}
