// Package user provides persistence operations for principals.
package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/db/controller"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

const usernameQueryPattern = "username = ?"

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = apperr.NotFoundf("user not found")
	// ErrUsernameExists is returned when a username is already taken.
	ErrUsernameExists = apperr.Conflictf("username already exists")
	// ErrUsernameEmpty is returned when a username is empty.
	ErrUsernameEmpty = apperr.Invalid("username cannot be empty", nil)
)

// Input holds the fields of a new user. Password is the plaintext password.
type Input struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Create stores a new active user with an Argon2id password hash.
// The user starts with the pharmacist display label and no role links.
func Create(db *gorm.DB, in Input) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrUsernameEmpty
	}

	var count int64
	if err := db.Model(&models.User{}).Where(usernameQueryPattern, username).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUsernameExists, username)
	}

	u := &models.User{
		Active:      true,
		Username:    username,
		Email:       strings.TrimSpace(in.Email),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Role:        models.RolePharmacist,
	}

	if in.Password != "" {
		u.Password = models.HashPassword(in.Password)
	}

	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrUsernameExists, username)
		}

		return nil, err
	}

	return u, nil
}

// GetByID retrieves a user by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// GetByUsername retrieves a user by its username.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var u models.User
	if err := db.Where(usernameQueryPattern, username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// Profile holds the optional fields of a profile update. A nil field is left unchanged.
type Profile struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// UpdateProfile changes the contact fields of a user. Username, password, active flag and
// display label are not touched.
func UpdateProfile(db *gorm.DB, id uint64, p Profile) (*models.User, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	u, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if p.Email != nil {
		updates["email"] = strings.TrimSpace(*p.Email)
	}

	if p.FirstName != nil {
		updates["first_name"] = *p.FirstName
	}

	if p.LastName != nil {
		updates["last_name"] = *p.LastName
	}

	if p.PhoneNumber != nil {
		updates["phone_number"] = *p.PhoneNumber
	}

	if len(updates) == 0 {
		return u, nil
	}

	if err = db.Model(u).Updates(updates).Error; err != nil {
		return nil, err
	}

	return GetByID(db, id)
}

// Delete removes a user and its role links. Assignments the user made to others
// survive with their assigner cleared.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetByID(tx, id); err != nil {
			return err
		}

		if err := tx.Model(&models.UserRole{}).
			Where("assigned_by = ?", id).
			Update("assigned_by", nil).Error; err != nil {
			return fmt.Errorf("failed to clear assigner: %w", err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove user roles: %w", err)
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
