// Package role provides CRUD operations for roles and the role-permission links.
//
// Every mutation that touches role_permissions runs in a single storage transaction,
// so concurrent readers see either the old or the new permission set, never a partial one.
package role

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/db/controller"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/permission"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

const (
	nameQueryPattern   = "name = ?"
	roleIDQueryPattern = "role_id = ?"

	invalidPermissionIDsMsg = "one or more permission ids are invalid"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = apperr.NotFoundf("role not found")
	// ErrNameExists is returned when a role name is already in use.
	ErrNameExists = apperr.Conflictf("role name already exists")
	// ErrNameEmpty is returned when a role name is empty.
	ErrNameEmpty = apperr.Invalid("role name cannot be empty", nil)
	// ErrSystemRoleDelete is returned when attempting to delete a system role.
	ErrSystemRoleDelete = apperr.Deniedf("cannot delete system role")
	// ErrSystemRoleRename is returned when attempting to rename a system role.
	ErrSystemRoleRename = apperr.Deniedf("cannot rename system role")
	// ErrReservedName is returned when a role would take the name of a system role.
	ErrReservedName = apperr.Conflictf("role name is reserved for a system role")
)

// reserved lists the names only the seed may give to a role.
var reserved = []string{models.RoleAdmin, models.RolePharmacist} //nolint:gochecknoglobals

// Input holds the fields of a new role.
type Input struct {
	Name          string
	Description   string
	IsSystem      bool
	PermissionIDs []uint
}

// Patch holds the optional fields of a role update. A nil field is left unchanged.
// A non-nil PermissionIDs replaces the whole permission set of the role.
type Patch struct {
	Name          *string
	Description   *string
	PermissionIDs *[]uint
}

// Detail is a role with its permission set and member count.
type Detail struct {
	models.Role
	Permissions []models.Permission `json:"permissions"`
	UsersCount  int64               `json:"users_count"`
}

// Get retrieves a role by its ID.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var r models.Role
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &r, nil
}

// GetByName retrieves a role by its name.
func GetByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var r models.Role
	if err := db.Where(nameQueryPattern, name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &r, nil
}

// GetDetail retrieves a role with its permissions and member count.
func GetDetail(db *gorm.DB, id uint) (*Detail, error) {
	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	return detail(db, r)
}

// IsReservedName reports whether name belongs to one of the seeded system roles.
func IsReservedName(name string) bool {
	return slices.Contains(reserved, strings.TrimSpace(name))
}

// List retrieves all roles with their permissions and member counts, ordered by ID.
func List(db *gorm.DB) ([]Detail, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var roles []models.Role
	if err := db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	return Details(db, roles)
}

// Permissions retrieves the permissions linked to a role.
func Permissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if _, err := Get(db, roleID); err != nil {
		return nil, err
	}

	return permissionsOf(db, roleID)
}

// Create creates a role and links it to the given permissions in one transaction.
// Unknown permission ids reject the whole operation.
func Create(db *gorm.DB, in Input) (*Detail, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameEmpty
	}

	if IsReservedName(name) {
		return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
	}

	r := &models.Role{
		Name:        name,
		Description: in.Description,
		IsSystem:    in.IsSystem,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, name, 0); err != nil {
			return err
		}

		if err := validatePermissionIDs(tx, in.PermissionIDs); err != nil {
			return err
		}

		if err := tx.Create(r).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %q", ErrNameExists, name)
			}

			return err
		}

		return insertLinks(tx, r.ID, in.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return detail(db, r)
}

// Update changes the name and/or description of a role. When p.PermissionIDs is set the
// role's permission set is replaced by exactly those ids in the same transaction.
func Update(db *gorm.DB, id uint, p Patch) (*Detail, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := Get(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}

		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)

			switch {
			case name == "":
				return ErrNameEmpty
			case name != r.Name && r.IsSystem:
				return ErrSystemRoleRename
			case name != r.Name && IsReservedName(name):
				return fmt.Errorf("%w: %q", ErrReservedName, name)
			case name != r.Name:
				if err = ensureNameFree(tx, name, r.ID); err != nil {
					return err
				}

				updates["name"] = name
			}
		}

		if p.Description != nil {
			updates["description"] = *p.Description
		}

		if p.PermissionIDs != nil {
			if err = validatePermissionIDs(tx, *p.PermissionIDs); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err = tx.Model(r).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrNameExists
				}

				return err
			}
		}

		if p.PermissionIDs != nil {
			return replaceLinks(tx, r.ID, *p.PermissionIDs)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetDetail(db, id)
}

// Delete deletes a non-system role together with its permission links and user assignments.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return controller.ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		r, err := Get(tx, id)
		if err != nil {
			return err
		}

		if r.IsSystem {
			return ErrSystemRoleDelete
		}

		if err = tx.Where(roleIDQueryPattern, r.ID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to remove user assignments: %w", err)
		}

		if err = tx.Where(roleIDQueryPattern, r.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to remove permission links: %w", err)
		}

		return tx.Delete(r).Error
	})
}

// SetPermissions replaces the permission set of a role with exactly the given ids.
// Unknown ids reject the whole operation and nothing is written.
func SetPermissions(db *gorm.DB, roleID uint, permissionIDs []uint) ([]models.Permission, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, roleID); err != nil {
			return err
		}

		if err := validatePermissionIDs(tx, permissionIDs); err != nil {
			return err
		}

		return replaceLinks(tx, roleID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return permissionsOf(db, roleID)
}

// PrivilegedIDs returns the ids of the admin role and of every role granting code,
// ordered by ID.
func PrivilegedIDs(db *gorm.DB, code string) ([]uint, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	var ids []uint

	err := db.Model(&models.Role{}).
		Joins("LEFT JOIN role_permissions ON role_permissions.role_id = roles.id").
		Joins("LEFT JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.name = ? OR permissions.code = ?", models.RoleAdmin, code).
		Order("roles.id ASC").
		Pluck("roles.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load privileged roles: %w", err)
	}

	return controller.Unique(ids), nil
}

// HasPermission reports whether the role is linked to the permission.
func HasPermission(db *gorm.DB, roleID, permissionID uint) (bool, error) {
	if db == nil {
		return false, controller.ErrDBNil
	}

	var count int64

	err := db.Model(&models.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error

	return count > 0, err
}

func detail(db *gorm.DB, r *models.Role) (*Detail, error) {
	out, err := Details(db, []models.Role{*r})
	if err != nil {
		return nil, err
	}

	return &out[0], nil
}

type permissionLink struct {
	RoleID uint
	models.Permission
}

type memberCount struct {
	RoleID  uint
	Members int64
}

// Details attaches permissions and member counts to roles, keeping their order.
// Permissions and counts are loaded with one query each, whatever the number of roles.
func Details(db *gorm.DB, roles []models.Role) ([]Detail, error) {
	if db == nil {
		return nil, controller.ErrDBNil
	}

	out := make([]Detail, len(roles))
	if len(roles) == 0 {
		return out, nil
	}

	ids := make([]uint, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}

	var links []permissionLink

	err := db.Model(&models.Permission{}).
		Select("role_permissions.role_id, permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id IN ?", ids).
		Order("permissions.id ASC").
		Scan(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	var counts []memberCount

	err = db.Model(&models.UserRole{}).
		Select("role_id, COUNT(*) AS members").
		Where("role_id IN ?", ids).
		Group("role_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count role members: %w", err)
	}

	perms := make(map[uint][]models.Permission, len(roles))
	for _, l := range links {
		perms[l.RoleID] = append(perms[l.RoleID], l.Permission)
	}

	members := make(map[uint]int64, len(counts))
	for _, c := range counts {
		members[c.RoleID] = c.Members
	}

	for i, r := range roles {
		p := perms[r.ID]
		if p == nil {
			p = []models.Permission{}
		}

		out[i] = Detail{Role: r, Permissions: p, UsersCount: members[r.ID]}
	}

	return out, nil
}

func permissionsOf(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	perms := []models.Permission{}

	err := db.Model(&models.Permission{}).
		Select("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.id ASC").
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	return perms, nil
}

func ensureNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64

	q := tx.Model(&models.Role{}).Where(nameQueryPattern, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: %q", ErrNameExists, name)
	}

	return nil
}

func validatePermissionIDs(tx *gorm.DB, ids []uint) error {
	missing, err := permission.Missing(tx, ids)
	if err != nil {
		return err
	}

	if len(missing) > 0 {
		return apperr.Invalid(invalidPermissionIDsMsg, missing)
	}

	return nil
}

// replaceLinks must run inside a transaction.
func replaceLinks(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	if err := tx.Where(roleIDQueryPattern, roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to remove permission links: %w", err)
	}

	return insertLinks(tx, roleID, permissionIDs)
}

func insertLinks(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	ids := controller.Unique(permissionIDs)
	if len(ids) == 0 {
		return nil
	}

	links := make([]models.RolePermission, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.RolePermission{RoleID: roleID, PermissionID: id})
	}

	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
	if err != nil {
		return fmt.Errorf("failed to link permissions: %w", err)
	}

	return nil
}
