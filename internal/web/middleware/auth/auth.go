package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	authn "github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/user"
	"github.com/pharmadesk/pharmadesk/internal/web/handler"
	"github.com/pharmadesk/pharmadesk/internal/web/session"
)

const bearerScheme = "Bearer"

// Config holds the collaborators of the bearer token middleware.
type Config struct {
	// DB is used to load the user a token belongs to.
	DB *gorm.DB
	// Issuer verifies token signatures and expiry.
	Issuer *authn.TokenIssuer
	// Sessions holds the ids of revoked tokens.
	Sessions *session.Revocations
}

// New creates the bearer token middleware.
func New(cfg Config) fiber.Handler {
	if cfg.DB == nil || cfg.Issuer == nil || cfg.Sessions == nil {
		panic("auth middleware: db, issuer and sessions are required")
	}

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, ok := BearerToken(header)
		if !ok {
			return unauthorized(c, authn.ErrInvalidToken)
		}

		claims, err := cfg.Issuer.Parse(raw)
		if err != nil {
			log.Debug().Err(err).Msg("rejected bearer token")
			return unauthorized(c, authn.ErrInvalidToken)
		}

		revoked, err := cfg.Sessions.IsRevoked(claims.ID)
		if err != nil {
			return handler.Error(c, err)
		}

		if revoked {
			return unauthorized(c, authn.ErrTokenRevoked)
		}

		userID, err := claims.UserID()
		if err != nil {
			return unauthorized(c, authn.ErrInvalidToken)
		}

		u, err := user.GetByID(cfg.DB, userID)
		if errors.Is(err, user.ErrUserNotFound) {
			return unauthorized(c, authn.ErrInvalidToken)
		}

		if err != nil {
			return handler.Error(c, err)
		}

		if !u.Active {
			return unauthorized(c, authn.ErrUserAccountDisabled)
		}

		p := authn.PrincipalFromUser(u)
		p.TokenID = claims.ID
		authn.SetPrincipal(c, p)

		return c.Next()
	}
}

// BearerToken extracts the token of an Authorization header using the Bearer scheme.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderWWWAuthenticate, bearerScheme)

	return handler.Error(c, err)
}
