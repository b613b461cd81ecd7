package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	postgresstorage "github.com/gofiber/storage/postgres/v3"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/revocation"
	"github.com/pharmadesk/pharmadesk/internal/db/dsn"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	gormlog "github.com/pharmadesk/pharmadesk/internal/logger/adapter/gorm"
)

const revokedTokensTable = "revoked_tokens"

// Dialector returns the gorm dialector of the configured engine.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return gormmysql.Open(dsn.Create(cfg)), nil
	case config.EnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg)), nil
	case config.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg)), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownEngine, cfg.DB.GormEngine)
	}
}

// OpenDB connects to the configured database and migrates every model.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlog.New(cfg.DB.LogLevel, 0),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}

	migrate := models.All()
	if cfg.DB.GormEngine == config.EngineSQLite {
		migrate = append(migrate, &models.RevokedToken{})
	}

	if err = db.AutoMigrate(migrate...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// NewRevocationStorage returns the storage backing the token revocation list.
// MySQL and PostgreSQL use the gofiber storage drivers, which manage their own
// connection and table. SQLite reuses the gorm connection and the migrated
// revoked_tokens table.
func NewRevocationStorage(cfg *config.Config, db *gorm.DB) (fiber.Storage, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.MySQL(cfg.DB),
			Table:         revokedTokensTable,
		}), nil
	case config.EnginePostgres:
		return postgresstorage.New(postgresstorage.Config{
			ConnectionURI: dsn.PostgresURI(cfg.DB),
			Table:         revokedTokensTable,
		}), nil
	default:
		return revocation.New(db)
	}
}
