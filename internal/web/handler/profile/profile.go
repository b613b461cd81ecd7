// Package profile provides the handlers of the caller's own account.
package profile

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/user"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
	"github.com/pharmadesk/pharmadesk/internal/web/session"
)

const (
	// Path is the path of the profile endpoint.
	Path = handler.AuthPath + "profile"

	// ChangePasswordPath is the path of the password change endpoint.
	ChangePasswordPath = handler.AuthPath + "change-password"
)

// UpdateRequest is the body of a profile update. Absent fields are left unchanged.
type UpdateRequest struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
}

// ChangePasswordRequest is the body of a password change.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// Service is the profile handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	provider  *auth.LocalProvider
	issuer    *auth.TokenIssuer
	sessions  *session.Revocations
}

// Handler is the profile handler.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	issuer *auth.TokenIssuer,
	sessions *session.Revocations,
) {
	if app == nil || cfg == nil || db == nil || issuer == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.provider = auth.NewLocalProvider(db)
	s.issuer = issuer
	s.sessions = sessions

	app.Get(Path, auth.RequireAuthenticated(), s.Get)
	app.Put(Path, auth.RequireAuthenticated(), s.Update)
	app.Post(ChangePasswordPath, auth.RequireAuthenticated(), s.ChangePassword)
}

// Get returns the account of the caller.
func (s *Service) Get(c *fiber.Ctx) error {
	u, err := user.GetByID(s.db, auth.PrincipalFromContext(c).ID)
	if err != nil {
		return handler.Error(c, err)
	}

	account, err := handler.LoadAccount(s.db, u)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(account)
}

// Update changes the contact fields of the caller.
func (s *Service) Update(c *fiber.Ctx) error {
	var req UpdateRequest
	if ok, err := handler.Bind(c, s.validator, &req); !ok {
		return err
	}

	u, err := user.UpdateProfile(s.db, auth.PrincipalFromContext(c).ID, user.Profile{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return handler.Error(c, err)
	}

	account, err := handler.LoadAccount(s.db, u)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(account)
}

// ChangePassword replaces the password of the caller, revokes the token the request used
// and answers with a fresh one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if ok, err := handler.Bind(c, s.validator, &req); !ok {
		return err
	}

	p := auth.PrincipalFromContext(c)

	if err := s.provider.ChangePassword(p.ID, req.OldPassword, req.NewPassword); err != nil {
		return handler.Error(c, err)
	}

	if p.TokenID != "" {
		if err := s.sessions.Revoke(p.TokenID, p.ID, s.issuer.TTL()); err != nil {
			return handler.Error(c, err)
		}
	}

	u, err := user.GetByID(s.db, p.ID)
	if err != nil {
		return handler.Error(c, err)
	}

	token, err := handler.IssueToken(s.issuer, u)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", p.ID).Msg("password changed")

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
		"token":   token,
	})
}
