// Package permission provides CRUD operations for the permission catalog.
package permission

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/db/controller"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

const (
	codeQueryPattern = "code = ?"
)

var (
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = apperr.NotFoundf("permission not found")
	// ErrCodeExists is returned when attempting to create a permission with a code already in use.
	ErrCodeExists = apperr.Conflictf("permission code already exists")
	// ErrCodeEmpty is returned when attempting to create a permission without a code.
	ErrCodeEmpty = apperr.Invalid("permission code cannot be empty", nil)
	// ErrInvalidAction is returned when the action is not one of create, read, update or delete.
	ErrInvalidAction = apperr.Invalid("permission action must be one of create, read, update, delete", nil)
)

// Get retrieves a permission by its ID.
func Get(db *gorm.DB, id uint) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perm models.Permission
	if err := db.First(&perm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &perm, nil
}

// GetByCode retrieves a permission by its code.
func GetByCode(db *gorm.DB, code string) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perm models.Permission
	if err := db.Where(codeQueryPattern, code).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}

		return nil, err
	}

	return &perm, nil
}

// List retrieves all permissions ordered by ID.
func List(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var perms []models.Permission
	if err := db.Order("id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// Create creates a new permission. The code must be unused.
func Create(db *gorm.DB, code, action string) (*models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeEmpty
	}

	if action == "" {
		action = models.ActionRead
	}

	if !slices.Contains(models.Actions, action) {
		return nil, ErrInvalidAction
	}

	var count int64
	if err := db.Model(&models.Permission{}).Where(codeQueryPattern, code).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, fmt.Errorf("%w: %q", ErrCodeExists, code)
	}

	perm := &models.Permission{Code: code, Action: action}
	if err := db.Create(perm).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrCodeExists, code)
		}

		return nil, err
	}

	return perm, nil
}

// Delete deletes a permission and every role link referencing it.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to remove role links: %w", err)
		}

		result := tx.Delete(&models.Permission{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrPermissionNotFound
		}

		return nil
	})
}

// Missing returns the ids that do not reference an existing permission.
func Missing(db *gorm.DB, ids []uint) ([]uint64, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	return controller.Missing(db, &models.Permission{}, ids)
}
