// Package role provides the handlers of the role store and of role permission sets.
package role

import (
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/permission"
	controller "github.com/pharmadesk/pharmadesk/internal/db/controller/role"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the base path of the role store.
	Path = handler.RBACPath + "roles"
)

// ErrCreateAdminGrant is returned when a principal without the admin role links
// create_admin to a role.
var ErrCreateAdminGrant = apperr.Deniedf("only administrators can grant %s", auth.PermCreateAdmin)

// CreateRequest is the body of a role creation.
type CreateRequest struct {
	Name          string `json:"name" validate:"required,max=50"`
	Description   string `json:"description"`
	PermissionIDs []uint `json:"permission_ids"`
}

// UpdateRequest is the body of a partial role update. Absent fields are left unchanged;
// a present permission_ids replaces the whole permission set.
type UpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description   *string `json:"description"`
	PermissionIDs *[]uint `json:"permission_ids"`
}

// PermissionsRequest is the body of a permission set replacement.
type PermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids" validate:"required"`
}

// Service provides the role handlers.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	validator   *validator.Validate
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.authService = authService

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath,
			auth.RequirePermission(authService, auth.PermRBACRolesRead),
			s.List,
		)
		router.Post(handler.RouterRootPath,
			auth.RequirePermission(authService, auth.PermRBACRolesCreate),
			s.Create,
		)
		router.Get("/:id",
			auth.RequirePermission(authService, auth.PermRBACRolesRead),
			s.Get,
		)
		router.Put("/:id",
			auth.RequirePermission(authService, auth.PermRBACRolesUpdate),
			s.Update,
		)
		router.Delete("/:id",
			auth.RequirePermission(authService, auth.PermRBACRolesDelete),
			s.Delete,
		)
		router.Get("/:id/permissions",
			auth.RequirePermission(authService, auth.PermRBACRolesRead),
			s.Permissions,
		)
		router.Post("/:id/permissions",
			auth.RequirePermission(authService, auth.PermRBACRolesUpdate),
			s.SetPermissions,
		)
	})
}

// List returns every role with its permissions and member count.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := controller.List(s.db)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(roles)
}

// Get returns a single role with its permissions and member count.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	role, err := controller.GetDetail(s.db, uint(id))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(role)
}

// Create creates a role, optionally with an initial permission set.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if ok, err := handler.Bind(c, s.validator, &req); !ok {
		return err
	}

	if err := s.guardCreateAdmin(c, 0, req.PermissionIDs); err != nil {
		return handler.Error(c, err)
	}

	role, err := controller.Create(s.db, controller.Input{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint("id", role.ID).Str("name", role.Name).Msg("role created")

	return c.Status(fiber.StatusCreated).JSON(role)
}

// Update applies a partial update to a role.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var req UpdateRequest
	if ok, bindErr := handler.Bind(c, s.validator, &req); !ok {
		return bindErr
	}

	if req.PermissionIDs != nil {
		if err = s.guardCreateAdmin(c, uint(id), *req.PermissionIDs); err != nil {
			return handler.Error(c, err)
		}
	}

	role, err := controller.Update(s.db, uint(id), controller.Patch{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint("id", role.ID).Str("name", role.Name).Msg("role updated")

	return c.JSON(role)
}

// Delete removes a non-system role.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err = controller.Delete(s.db, uint(id)); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("id", id).Msg("role deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions returns the permission set of a role.
func (s *Service) Permissions(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	perms, err := controller.Permissions(s.db, uint(id))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(perms)
}

// SetPermissions replaces the permission set of a role.
func (s *Service) SetPermissions(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var req PermissionsRequest
	if ok, bindErr := handler.Bind(c, s.validator, &req); !ok {
		return bindErr
	}

	if err = s.guardCreateAdmin(c, uint(id), req.PermissionIDs); err != nil {
		return handler.Error(c, err)
	}

	perms, err := controller.SetPermissions(s.db, uint(id), req.PermissionIDs)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("id", id).Int("permissions", len(perms)).Msg("role permissions replaced")

	return c.JSON(fiber.Map{
		"message":     "Permissions assigned successfully",
		"permissions": perms,
	})
}

// guardCreateAdmin rejects principals without the admin role that would link create_admin
// to roleID. A roleID of 0 stands for a role being created.
func (s *Service) guardCreateAdmin(c *fiber.Ctx, roleID uint, permissionIDs []uint) error {
	perm, err := permission.GetByCode(s.db, auth.PermCreateAdmin)
	if errors.Is(err, permission.ErrPermissionNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if !slices.Contains(permissionIDs, perm.ID) {
		return nil
	}

	if roleID != 0 {
		held, holdErr := controller.HasPermission(s.db, roleID, perm.ID)
		if holdErr != nil {
			return holdErr
		}

		if held {
			return nil
		}
	}

	admin, err := s.authService.IsAdmin(c.UserContext(), auth.PrincipalFromContext(c))
	if err != nil {
		return err
	}

	if !admin {
		log.Warn().Uint("role_id", roleID).Msg("create_admin grant denied")
		return ErrCreateAdminGrant
	}

	return nil
}
