package models

import "time"

// Permission actions.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Actions lists every valid permission action.
var Actions = []string{ActionCreate, ActionRead, ActionUpdate, ActionDelete} //nolint:gochecknoglobals

// Permission is a single grantable capability identified by a globally unique code.
// Permissions are bundled into roles through RolePermission.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the unique permission code (e.g. "inventory.read", "create_admin").
	Code string `gorm:"uniqueIndex;size:100;not null" json:"code"`
	// Action is one of create, read, update or delete.
	Action string `gorm:"size:20;not null;default:'read';index" json:"action"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
