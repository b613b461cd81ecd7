package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownEngine error if config db.gormengine is not a supported engine.
	ErrUnknownEngine = errors.New("toml config db.gormengine must be one of mysql, postgres, sqlite")

	// ErrEmptySQLitePath error if the sqlite engine is selected without a database file.
	ErrEmptySQLitePath = errors.New("toml config db.path can not be empty for sqlite")

	// ErrEmptyTokenSecret error if config auth.tokensecret is empty.
	ErrEmptyTokenSecret = errors.New("toml config auth.tokensecret can not be empty")

	// ErrEmptyAdminUsername error if config bootstrap.adminusername is empty.
	ErrEmptyAdminUsername = errors.New("toml config bootstrap.adminusername can not be empty")
)
