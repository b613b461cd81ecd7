// Package revocation implements fiber.Storage on top of the revoked_tokens table.
//
// It backs the token revocation list when the service runs on SQLite. MySQL and
// PostgreSQL deployments use the gofiber storage drivers instead.
package revocation

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmadesk/pharmadesk/internal/db/controller"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// Store is a gorm backed fiber.Storage.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ fiber.Storage = (*Store)(nil)

// New returns a Store using db. The revoked_tokens table must already be migrated.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	return &Store{db: db, now: time.Now}, nil
}

// Get returns the value stored for key, or nil when the key is absent or expired.
func (s *Store) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var row models.RevokedToken

	err := s.db.Where("k = ? AND (e = 0 OR e > ?)", key, s.now().Unix()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return row.Value, nil
}

// Set stores val for key. A zero exp keeps the entry forever.
func (s *Store) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	row := models.RevokedToken{Key: key, Value: val}
	if exp > 0 {
		row.Exp = s.now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "e"}),
	}).Create(&row).Error
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Where("k = ?", key).Delete(&models.RevokedToken{}).Error
}

// Reset removes every entry.
func (s *Store) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.RevokedToken{}).Error
}

// GC removes expired entries and returns how many were dropped.
func (s *Store) GC() (int64, error) {
	res := s.db.Where("e <> 0 AND e <= ?", s.now().Unix()).Delete(&models.RevokedToken{})

	return res.RowsAffected, res.Error
}

// Close is a no-op, the connection pool belongs to the caller.
func (s *Store) Close() error {
	return nil
}
