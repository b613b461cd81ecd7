package config

import (
	"time"

	"github.com/pharmadesk/pharmadesk/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Bootstrap Bootstrap
	Metrics   Metrics
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
	BodyLimit      int    // max request body size in bytes, 0 keeps the fiber default
}

// Auth holds the bearer token settings.
type Auth struct {
	TokenSecret string        // HMAC secret used to sign tokens
	TokenTTL    time.Duration // token lifetime, e.g. "24h"
	Issuer      string        // iss claim, checked on every request when set
}

// Bootstrap holds the settings of the initial data seed.
type Bootstrap struct {
	SeedOnStart   bool // run the seed before the webserver starts
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Metrics holds the prometheus endpoint settings.
type Metrics struct {
	Enabled bool
	Path    string
}
