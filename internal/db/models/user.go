package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a principal of the pharmacy backend.
// Role is a display label derived from the user's UserRole set ("admin" when the
// admin role is held, "pharmacist" otherwise). Authorization never reads it.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the user account is active and can log in.
	Active bool `gorm:"not null" json:"is_active"`
	// Username is the unique username for login.
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	// Email is the user's email address.
	Email string `gorm:"size:255;index" json:"email"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:150" json:"first_name"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:150" json:"last_name"`
	// PhoneNumber is an optional contact number.
	PhoneNumber string `gorm:"size:15" json:"phone_number"`
	// Role is the cached display label, see the type documentation.
	Role string `gorm:"size:50;default:'pharmacist';index" json:"role"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"date_joined"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// All returns every RBAC model in migration order. RevokedToken is not part of it,
// its table only exists when the revocation list lives in the gorm database.
func All() []any {
	return []any{
		&User{},
		&Permission{},
		&Role{},
		&RolePermission{},
		&UserRole{},
	}
}
