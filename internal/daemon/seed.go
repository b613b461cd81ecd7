package daemon

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	"github.com/pharmadesk/pharmadesk/internal/uniuri"
)

// ErrAdminUsernameEmpty is returned when the bootstrap admin username is not configured.
var ErrAdminUsernameEmpty = errors.New("bootstrap admin username can not be empty")

// catalog lists the permissions the seed makes sure exist. Only create_admin is
// granted by the seed (to the admin role); the rbac codes are there to be granted
// to custom roles.
var catalog = []models.Permission{ //nolint:gochecknoglobals
	{Code: auth.PermCreateAdmin, Action: models.ActionCreate},
	{Code: auth.PermRBACPermissionsRead, Action: models.ActionRead},
	{Code: auth.PermRBACPermissionsCreate, Action: models.ActionCreate},
	{Code: auth.PermRBACPermissionsDelete, Action: models.ActionDelete},
	{Code: auth.PermRBACRolesRead, Action: models.ActionRead},
	{Code: auth.PermRBACRolesCreate, Action: models.ActionCreate},
	{Code: auth.PermRBACRolesUpdate, Action: models.ActionUpdate},
	{Code: auth.PermRBACRolesDelete, Action: models.ActionDelete},
	{Code: auth.PermRBACAssignmentsRead, Action: models.ActionRead},
	{Code: auth.PermRBACAssignmentsUpdate, Action: models.ActionUpdate},
}

// Seed creates the initial RBAC data. It is idempotent: every record is looked up
// first and inserted with conflict-ignore, so concurrent or repeated runs converge on
// one copy of each.
//
// After Seed the admin role (system) holds create_admin, the pharmacist role (system)
// holds nothing, and the configured admin user holds the admin role.
func Seed(db *gorm.DB, cfg config.Bootstrap) error {
	if cfg.AdminUsername == "" {
		return ErrAdminUsernameEmpty
	}

	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]*models.Permission, len(catalog))

		for _, p := range catalog {
			got, err := ensurePermission(tx, p)
			if err != nil {
				return err
			}

			perms[p.Code] = got
		}

		admin, err := ensureRole(tx, models.Role{Name: models.RoleAdmin, Description: "System administrator", IsSystem: true})
		if err != nil {
			return err
		}

		if err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.RolePermission{RoleID: admin.ID, PermissionID: perms[auth.PermCreateAdmin].ID}).Error; err != nil {
			return fmt.Errorf("failed to grant %s to admin: %w", auth.PermCreateAdmin, err)
		}

		if _, err = ensureRole(tx, models.Role{
			Name:        models.RolePharmacist,
			Description: "Regular pharmacist",
			IsSystem:    true,
		}); err != nil {
			return err
		}

		user, err := ensureAdminUser(tx, cfg)
		if err != nil {
			return err
		}

		if err = tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserRole{UserID: user.ID, RoleID: admin.ID, AssignedBy: &user.ID}).Error; err != nil {
			return fmt.Errorf("failed to assign admin role: %w", err)
		}

		return tx.Model(user).Update("role", models.RoleAdmin).Error
	})
}

func ensurePermission(tx *gorm.DB, p models.Permission) (*models.Permission, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Where(models.Permission{Code: p.Code}).
		FirstOrCreate(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to seed permission %s: %w", p.Code, err)
	}

	// a concurrent seed inserted the row between our lookup and insert
	if p.ID == 0 {
		if err := tx.Where("code = ?", p.Code).First(&p).Error; err != nil {
			return nil, fmt.Errorf("failed to reload permission %s: %w", p.Code, err)
		}
	}

	log.Debug().Str("code", p.Code).Uint("id", p.ID).Msg("seed: permission ready")

	return &p, nil
}

func ensureRole(tx *gorm.DB, r models.Role) (*models.Role, error) {
	system := r.IsSystem

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Where(models.Role{Name: r.Name}).
		Attrs(models.Role{Description: r.Description, IsSystem: r.IsSystem}).
		FirstOrCreate(&r).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role %s: %w", r.Name, err)
	}

	if r.ID == 0 {
		if err := tx.Where("name = ?", r.Name).First(&r).Error; err != nil {
			return nil, fmt.Errorf("failed to reload role %s: %w", r.Name, err)
		}
	}

	// a same-named role created before the first seed is promoted
	if system && !r.IsSystem {
		if err := tx.Model(&r).Update("is_system", true).Error; err != nil {
			return nil, fmt.Errorf("failed to mark role %s as system: %w", r.Name, err)
		}

		log.Warn().Str("role", r.Name).Uint("id", r.ID).Msg("seed: existing role marked as system role")
	}

	log.Debug().Str("role", r.Name).Uint("id", r.ID).Msg("seed: role ready")

	return &r, nil
}

func ensureAdminUser(tx *gorm.DB, cfg config.Bootstrap) (*models.User, error) {
	var user models.User

	err := tx.Where("username = ?", cfg.AdminUsername).First(&user).Error
	if err == nil {
		log.Debug().Str("username", user.Username).Msg("seed: admin user already exists")
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	user = models.User{
		Active:    true,
		Username:  cfg.AdminUsername,
		Email:     cfg.AdminEmail,
		FirstName: "Admin",
		LastName:  "User",
		Role:      models.RoleAdmin,
	}

	password := cfg.AdminPassword
	if password == "" {
		password = uniuri.New()
		log.Warn().Str("username", user.Username).Str("password", password).
			Msg("seed: no admin password configured, generated one; change it after the first login")
	}

	user.Password = models.HashPassword(password)

	if err = tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().Str("username", user.Username).Msg("seed: created default admin user")

	return &user, nil
}
