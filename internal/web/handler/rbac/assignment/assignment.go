// Package assignment provides the handlers that grant roles to users and take them away.
package assignment

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/role"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/user"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the route of the role set of a user.
	Path = handler.RBACPath + "users/:id/roles"
)

// ErrPrivilegedRole is returned when a principal without the admin role grants or revokes
// the admin role or a role holding create_admin.
var ErrPrivilegedRole = apperr.Deniedf("only administrators can grant or revoke privileged roles")

// AssignRequest is the body of a role set replacement.
type AssignRequest struct {
	RoleIDs []uint `json:"role_ids" validate:"required"`
}

// Service provides the user role assignment handlers.
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

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermRBACAssignmentsRead),
		s.Get,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermRBACAssignmentsUpdate),
		s.Assign,
	)
	app.Delete(Path+"/:roleId",
		auth.RequirePermission(authService, auth.PermRBACAssignmentsUpdate),
		s.Remove,
	)
}

// Get returns a user together with its roles.
func (s *Service) Get(c *fiber.Ctx) error {
	userID, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	u, err := userrole.Get(s.db, userID)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(u)
}

// Assign replaces the role set of a user. The acting principal is recorded as assigner.
func (s *Service) Assign(c *fiber.Ctx) error {
	userID, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var req AssignRequest
	if ok, bindErr := handler.Bind(c, s.validator, &req); !ok {
		return bindErr
	}

	held, err := userrole.RoleIDs(s.db, userID)
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.guardPrivileged(c, changed(held, req.RoleIDs)); err != nil {
		return handler.Error(c, err)
	}

	var assignedBy *uint64
	if p := auth.PrincipalFromContext(c); p != nil {
		assignedBy = &p.ID
	}

	u, err := userrole.Assign(s.db, userID, req.RoleIDs, assignedBy)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", userID).Uints("role_ids", req.RoleIDs).Msg("user roles replaced")

	return c.JSON(fiber.Map{
		"message": "Roles assigned successfully",
		"user":    u,
	})
}

// Remove takes a single role away from a user.
func (s *Service) Remove(c *fiber.Ctx) error {
	userID, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	roleID, err := handler.ParseID(c, "roleId")
	if err != nil {
		return handler.Error(c, err)
	}

	u, err := user.GetByID(s.db, userID)
	if err != nil {
		return handler.Error(c, err)
	}

	r, err := role.Get(s.db, uint(roleID))
	if err != nil {
		return handler.Error(c, err)
	}

	if err = s.guardPrivileged(c, []uint{r.ID}); err != nil {
		return handler.Error(c, err)
	}

	if err = userrole.Remove(s.db, userID, r.ID); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", userID).Uint("role_id", r.ID).Msg("user role removed")

	return c.JSON(handler.Message{
		Message: fmt.Sprintf("Role %s removed from user %s", r.Name, u.Username),
	})
}

// guardPrivileged rejects the request unless the principal holds the admin role
// or none of roleIDs is privileged.
func (s *Service) guardPrivileged(c *fiber.Ctx, roleIDs []uint) error {
	if len(roleIDs) == 0 {
		return nil
	}

	privileged, err := role.PrivilegedIDs(s.db, auth.PermCreateAdmin)
	if err != nil {
		return err
	}

	if !slices.ContainsFunc(roleIDs, func(id uint) bool { return slices.Contains(privileged, id) }) {
		return nil
	}

	p := auth.PrincipalFromContext(c)

	admin, err := s.authService.IsAdmin(c.UserContext(), p)
	if err != nil {
		return err
	}

	if !admin {
		log.Warn().Uints("role_ids", roleIDs).Msg("privileged role change denied")
		return ErrPrivilegedRole
	}

	return nil
}

// changed returns the role ids present in exactly one of held and requested.
func changed(held, requested []uint) []uint {
	var out []uint

	for _, id := range requested {
		if !slices.Contains(held, id) {
			out = append(out, id)
		}
	}

	for _, id := range held {
		if !slices.Contains(requested, id) {
			out = append(out, id)
		}
	}

	return out
}
