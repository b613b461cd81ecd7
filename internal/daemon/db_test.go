package daemon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/revocation"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{DB: config.DB{
		GormEngine: config.EngineSQLite,
		Path:       filepath.Join(t.TempDir(), "pharmadesk.db"),
		LogLevel:   "silent",
	}}
}

func TestOpenDB(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, m := range append(models.All(), &models.RevokedToken{}) {
		assert.True(t, db.Migrator().HasTable(m))
	}

	storage, err := NewRevocationStorage(cfg, db)
	require.NoError(t, err)
	assert.IsType(t, &revocation.Store{}, storage)

	require.NoError(t, storage.Set("jti", []byte("1"), 0))

	val, err := storage.Get("jti")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
}

func TestDialector(t *testing.T) {
	for _, engine := range config.Engines {
		d, err := Dialector(&config.Config{DB: config.DB{GormEngine: engine, Path: "x.db"}})
		require.NoError(t, err)
		assert.Equal(t, engine, d.Name())
	}

	_, err := Dialector(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	assert.ErrorIs(t, err, config.ErrUnknownEngine)
}
