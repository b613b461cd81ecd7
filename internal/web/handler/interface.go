package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
)

// Service is the interface of a web handler service registering its own routes.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service)
}
