// Package dbtest provides an in-memory SQLite database for package tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// New opens a fresh in-memory SQLite database with foreign keys enabled and all models migrated.
// The pool is limited to one connection so every statement sees the same in-memory database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(append(models.All(), &models.RevokedToken{})...), "failed to migrate test database")

	return db
}

// CreateUser inserts an active user with the given username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Active:   true,
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RolePharmacist,
	}
	require.NoError(t, db.Create(user).Error)

	return user
}

// CreatePermission inserts a permission.
func CreatePermission(t *testing.T, db *gorm.DB, code, action string) *models.Permission {
	t.Helper()

	perm := &models.Permission{Code: code, Action: action}
	require.NoError(t, db.Create(perm).Error)

	return perm
}

// CreateRole inserts a role.
func CreateRole(t *testing.T, db *gorm.DB, name string, system bool) *models.Role {
	t.Helper()

	role := &models.Role{Name: name, IsSystem: system}
	require.NoError(t, db.Create(role).Error)

	return role
}

// Grant links a permission to a role.
func Grant(t *testing.T, db *gorm.DB, role *models.Role, perm *models.Permission) {
	t.Helper()

	require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
}

// Assign links a role to a user.
func Assign(t *testing.T, db *gorm.DB, user *models.User, role *models.Role) {
	t.Helper()

	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
}
