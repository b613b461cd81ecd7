// Package register provides the account creation handlers.
//
// Public registration creates a pharmacist. Registering an administrator requires the
// create_admin permission and grants the admin role.
package register

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/role"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/user"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
)

const (
	// Path is the path of the public registration endpoint.
	Path = handler.AuthPath + "register"

	// AdminPath is the path of the administrator registration endpoint.
	AdminPath = handler.AuthPath + "admin/register"
)

// Request is the body of a registration.
type Request struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Password    string `json:"password" validate:"required"`
	Password2   string `json:"password2" validate:"required,eqfield=Password"`
	FirstName   string `json:"first_name" validate:"max=150"`
	LastName    string `json:"last_name" validate:"max=150"`
	PhoneNumber string `json:"phone_number" validate:"max=15"`
}

// Response is the body of a successful registration.
type Response struct {
	Message string           `json:"message"`
	User    *handler.Account `json:"user"`
	Token   *handler.Token   `json:"token"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	issuer    *auth.TokenIssuer
}

// Handler is the registration handler.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authService *auth.Service,
	issuer *auth.TokenIssuer,
) {
	if app == nil || cfg == nil || db == nil || issuer == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.issuer = issuer

	app.Post(Path, s.Register)
	app.Post(AdminPath,
		auth.RequirePermission(authService, auth.PermCreateAdmin),
		s.RegisterAdmin,
	)
}

// Register creates a pharmacist account.
func (s *Service) Register(c *fiber.Ctx) error {
	return s.register(c, models.RolePharmacist, nil, "User registered successfully")
}

// RegisterAdmin creates an administrator account on behalf of the calling principal.
func (s *Service) RegisterAdmin(c *fiber.Ctx) error {
	p := auth.PrincipalFromContext(c)

	return s.register(c, models.RoleAdmin, &p.ID, "Admin user registered successfully")
}

func (s *Service) register(c *fiber.Ctx, roleName string, assignedBy *uint64, message string) error {
	var req Request
	if ok, err := handler.Bind(c, s.validator, &req); !ok {
		return err
	}

	var created *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := user.Create(tx, user.Input{
			Username:    req.Username,
			Email:       req.Email,
			Password:    req.Password,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			return err
		}

		created = u

		r, err := role.GetByName(tx, roleName)
		if errors.Is(err, role.ErrRoleNotFound) {
			log.Warn().Str("role", roleName).Msg("registering user without role, run the seed command")
			return nil
		}

		if err != nil {
			return err
		}

		assigned, err := userrole.Assign(tx, u.ID, []uint{r.ID}, assignedBy)
		if err != nil {
			return err
		}

		created = &assigned.User

		return nil
	})
	if err != nil {
		return handler.Error(c, err)
	}

	token, err := handler.IssueToken(s.issuer, created)
	if err != nil {
		return handler.Error(c, err)
	}

	account, err := handler.LoadAccount(s.db, created)
	if err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", created.ID).Str("role", roleName).Msg("user registered")

	return c.Status(fiber.StatusCreated).JSON(Response{
		Message: message,
		User:    account,
		Token:   token,
	})
}
