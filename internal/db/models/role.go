package models

import "time"

// Built-in role names.
const (
	// RoleAdmin is the name of the role whose holders pass every authorization check.
	RoleAdmin = "admin"
	// RolePharmacist is the name of the default role for regular users.
	RolePharmacist = "pharmacist"
)

// Role is a named bundle of permissions that can be assigned to users.
// System roles (IsSystem) are seeded at bootstrap and cannot be deleted.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique name of the role (e.g., "admin", "pharmacist").
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"type:text" json:"description"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `gorm:"default:false;not null" json:"is_system"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
