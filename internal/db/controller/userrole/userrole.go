// Package userrole manages the roles held by users.
//
// The user_roles table is the source of truth for authorization. The users.role column is a
// display label refreshed here after every mutation and never read by the authorization engine.
package userrole

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/db/controller"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/role"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

const (
	userIDQueryPattern = "user_id = ?"

	invalidRoleIDsMsg = "one or more role ids are invalid"
)

var (
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = apperr.NotFoundf("user not found")
	// ErrAssignmentNotFound is returned when the user does not hold the role.
	ErrAssignmentNotFound = apperr.NotFoundf("user does not have this role")
)

// UserWithRoles is a user together with the roles it holds.
type UserWithRoles struct {
	models.User
	Roles []role.Detail `json:"roles"`
}

// Roles retrieves the roles held by a user, with their permissions and member counts.
func Roles(db *gorm.DB, userID uint64) ([]role.Detail, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}

	var roles []models.Role
	if err := db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id ASC").
		Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}

	return role.Details(db, roles)
}

// Get retrieves a user with its roles.
func Get(db *gorm.DB, userID uint64) (*UserWithRoles, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	roles, err := Roles(db, userID)
	if err != nil {
		return nil, err
	}

	return &UserWithRoles{User: user, Roles: roles}, nil
}

// RoleIDs returns the ids of the roles held by a user, ordered by role ID.
func RoleIDs(db *gorm.DB, userID uint64) ([]uint, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	ids := []uint{}

	err := db.Model(&models.UserRole{}).
		Where(userIDQueryPattern, userID).
		Order("role_id ASC").
		Pluck("role_id", &ids).Error

	return ids, err
}

// RoleNames returns the names of the roles held by a user, ordered by role ID.
func RoleNames(db *gorm.DB, userID uint64) ([]string, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	names := []string{}

	err := db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id ASC").
		Pluck("roles.name", &names).Error

	return names, err
}

// Assign replaces the role set of a user with exactly roleIDs, recording assignedBy on every
// new link. Unknown role ids reject the whole operation and nothing is written.
func Assign(db *gorm.DB, userID uint64, roleIDs []uint, assignedBy *uint64) (*UserWithRoles, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID); err != nil {
			return err
		}

		missing, err := controller.Missing(tx, &models.Role{}, roleIDs)
		if err != nil {
			return err
		}

		if len(missing) > 0 {
			return apperr.Invalid(invalidRoleIDsMsg, missing)
		}

		if err = tx.Where(userIDQueryPattern, userID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove user roles: %w", err)
		}

		ids := controller.Unique(roleIDs)
		if len(ids) > 0 {
			links := make([]models.UserRole, 0, len(ids))
			for _, id := range ids {
				links = append(links, models.UserRole{UserID: userID, RoleID: id, AssignedBy: assignedBy})
			}

			if err = tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&links).Error; err != nil {
				return fmt.Errorf("failed to assign roles: %w", err)
			}
		}

		return RefreshLabel(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, userID)
}

// Remove takes a single role away from a user.
func Remove(db *gorm.DB, userID uint64, roleID uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID); err != nil {
			return err
		}

		if _, err := role.Get(tx, roleID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove user role: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrAssignmentNotFound
		}

		return RefreshLabel(tx, userID)
	})
}

// RefreshLabel recomputes the display label of a user from its role links:
// "admin" when the admin role is held, "pharmacist" otherwise.
func RefreshLabel(tx *gorm.DB, userID uint64) error {
	var count int64

	err := tx.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return err
	}

	label := models.RolePharmacist
	if count > 0 {
		label = models.RoleAdmin
	}

	return tx.Model(&models.User{}).Where("id = ?", userID).Update("role", label).Error
}

func ensureUser(db *gorm.DB, userID uint64) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrUserNotFound
	}

	return nil
}
