// Package logout provides the handler ending the bearer token session of the caller.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
	"github.com/pharmadesk/pharmadesk/internal/web/session"
)

const (
	// Path is the path of the logout endpoint.
	Path = handler.AuthPath + "logout"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	sessions *session.Revocations
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Revocations) {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.sessions = sessions

	app.Post(Path, auth.RequireAuthenticated(), s.Logout)
}

// Logout revokes the token the request was authenticated with until it would have expired.
func (s *Service) Logout(c *fiber.Ctx) error {
	p := auth.PrincipalFromContext(c)

	if err := s.sessions.Revoke(p.TokenID, p.ID, s.cfg.Auth.TokenTTL); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", p.ID).Msg("logout successful")

	return c.JSON(handler.Message{Message: "Logout successful"})
}
