// Package permission provides the handlers of the permission catalog.
package permission

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	controller "github.com/pharmadesk/pharmadesk/internal/db/controller/permission"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the base path of the permission catalog.
	Path = handler.RBACPath + "permissions"
)

// CreateRequest is the body of a permission creation.
type CreateRequest struct {
	Code   string `json:"code" validate:"required,max=100"`
	Action string `json:"action" validate:"omitempty,oneof=create read update delete"`
}

// Service provides the permission catalog handlers.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermRBACPermissionsRead),
		s.List,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermRBACPermissionsCreate),
		s.Create,
	)
	app.Get(Path+"/:id",
		auth.RequirePermission(authService, auth.PermRBACPermissionsRead),
		s.Get,
	)
	app.Delete(Path+"/:id",
		auth.RequirePermission(authService, auth.PermRBACPermissionsDelete),
		s.Delete,
	)
}

// List returns every permission ordered by id.
func (s *Service) List(c *fiber.Ctx) error {
	perms, err := controller.List(s.db)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(perms)
}

// Get returns a single permission.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	perm, err := controller.Get(s.db, uint(id))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(perm)
}

// Create adds a permission to the catalog.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if ok, err := handler.Bind(c, s.validator, &req); !ok {
		return err
	}

	perm, err := controller.Create(s.db, req.Code, req.Action)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Str("code", perm.Code).Str("action", perm.Action).Msg("permission created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Permission created successfully",
		"permission": perm,
	})
}

// Delete removes a permission and its role links.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err = controller.Delete(s.db, uint(id)); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("id", id).Msg("permission deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
