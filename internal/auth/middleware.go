package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	msgUnauthorized = "authentication credentials were not provided"
	msgForbidden    = "you do not have permission to perform this action"
	msgInternal     = "internal server error"
)

func reject(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// RequireAuthenticated creates Fiber middleware that rejects requests without an authenticated principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromContext(c)
		if p == nil || !p.Authenticated {
			return reject(c, fiber.StatusUnauthorized, msgUnauthorized)
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// The check runs before the handler, so a denied request never reaches any mutation.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromContext(c)
		if p == nil || !p.Authenticated {
			return reject(c, fiber.StatusUnauthorized, msgUnauthorized)
		}

		hasPermission, err := authService.Authorize(c.UserContext(), p, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", p.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return reject(c, fiber.StatusInternalServerError, msgInternal)
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", p.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return reject(c, fiber.StatusForbidden, msgForbidden)
		}

		return c.Next()
	}
}
