// Package check answers whether the calling principal holds a permission code.
package check

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the route of the permission check.
	Path = handler.RBACPath + "check-permission"
)

// Result is the answer of a permission check.
type Result struct {
	Permission    string `json:"permission"`
	HasPermission bool   `json:"has_permission"`
}

// Service provides the permission check handler.
type Service struct {
	handler.Service
	cfg         *config.Config
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

	s.cfg = cfg
	s.authService = authService

	app.Get(Path, auth.RequireAuthenticated(), s.Get)
}

// Get evaluates the code query parameter for the calling principal.
func (s *Service) Get(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: "Permission code required"})
	}

	allowed, err := s.authService.Authorize(c.UserContext(), auth.PrincipalFromContext(c), code)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Result{Permission: code, HasPermission: allowed})
}
