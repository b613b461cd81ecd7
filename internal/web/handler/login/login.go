package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.AuthPath + "login"
)

// Request is the body of a login.
type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response is the body of a successful login.
type Response struct {
	Message     string           `json:"message"`
	User        *handler.Account `json:"user"`
	Roles       []RoleSummary    `json:"roles"`
	Permissions []string         `json:"permissions"`
	Token       *handler.Token   `json:"token"`
}

// RoleSummary describes a role held by the logged in user.
type RoleSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `json:"is_system"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	provider    *auth.LocalProvider
	authService *auth.Service
	issuer      *auth.TokenIssuer
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.Service,
	issuer *auth.TokenIssuer,
) error {
	if app == nil || cfg == nil || db == nil || authService == nil || issuer == nil {
		return errors.New("app, cfg, db, auth service or issuer is nil")
	}

	s.db = db
	s.cfg = cfg
	s.provider = auth.NewLocalProvider(db)
	s.authService = authService
	s.issuer = issuer

	app.Post(Path, s.Post)

	return nil
}

// Post authenticates the posted credentials and answers with a bearer token, the roles of
// the user and the union of their permission codes.
func (s *Service) Post(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, handler.ErrInvalidBody)
	}

	if req.Username == "" || req.Password == "" {
		return handler.Error(c, ErrMissingCredentials)
	}

	user, err := s.provider.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", req.Username).Err(err).Msg("login failed")
		return handler.Error(c, err)
	}

	token, err := handler.IssueToken(s.issuer, user)
	if err != nil {
		return handler.Error(c, err)
	}

	account, err := handler.LoadAccount(s.db, user)
	if err != nil {
		return handler.Error(c, err)
	}

	roles, err := userrole.Roles(s.db, user.ID)
	if err != nil {
		return handler.Error(c, err)
	}

	summaries := make([]RoleSummary, 0, len(roles))
	for _, r := range roles {
		summaries = append(summaries, RoleSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			IsSystem:    r.IsSystem,
		})
	}

	permissions, err := s.authService.UserPermissions(c.UserContext(), auth.PrincipalFromUser(user))
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Msg("login successful")

	return c.JSON(Response{
		Message:     "Login successful",
		User:        account,
		Roles:       summaries,
		Permissions: permissions,
		Token:       token,
	})
}
