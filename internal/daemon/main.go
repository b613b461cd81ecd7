// Package daemon wires configuration, storage and the web service into the running server.
package daemon

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/web"
	"github.com/pharmadesk/pharmadesk/internal/web/session"
)

// ErrNilConfig is returned when the daemon is created without configuration.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	storage    fiber.Storage
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it is stopped.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	defer func() {
		if err := d.storage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close revocation storage")
		}
	}()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// Web returns the web service of the daemon.
func (d *Daemon) Web() *web.Service {
	return d.webService
}

// DB returns the database handle of the daemon.
func (d *Daemon) DB() *gorm.DB {
	return d.db
}

// New creates a new Daemon instance with the provided configuration: it opens and migrates
// the database, optionally seeds it, and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Bootstrap.SeedOnStart {
		if err = Seed(db, cfg.Bootstrap); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}

		log.Info().Str("admin", cfg.Bootstrap.AdminUsername).Msg("database seeded")
	}

	storage, err := NewRevocationStorage(cfg, db)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		storage:    storage,
		webService: web.New(cfg, db, issuer, session.New(storage)),
	}, nil
}
