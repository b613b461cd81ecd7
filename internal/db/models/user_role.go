package models

import "time"

// UserRole assigns a role to a user and records who granted it.
// The (user_id, role_id) pair is unique. When the assigning user is deleted
// the link survives and AssignedBy is cleared (SET NULL).
type UserRole struct {
	// ID is the unique identifier for the assignment.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the ID of the user holding the role.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_role"`
	// RoleID is the ID of the assigned role.
	RoleID uint `gorm:"not null;uniqueIndex:idx_user_role;index"`
	// AssignedBy is the ID of the user who made the assignment, nil once that user is gone.
	AssignedBy *uint64 `gorm:"index"`
	// AssignedAt is the timestamp of the assignment.
	AssignedAt time.Time `gorm:"autoCreateTime"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// Assigner is the user referenced by AssignedBy.
	Assigner *User `gorm:"foreignKey:AssignedBy;constraint:OnDelete:SET NULL"`
}

// TableName specifies the database table name for the UserRole model.
func (UserRole) TableName() string {
	return "user_roles"
}
