package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// PrincipalLocalsKey is the fiber.Ctx locals key holding the request principal.
const PrincipalLocalsKey = "principal"

// Principal is the authenticated identity a request acts as.
type Principal struct {
	// ID is the user ID of the principal.
	ID uint64
	// Username is the login name of the principal.
	Username string
	// Authenticated is false for anonymous principals.
	Authenticated bool
	// TokenID is the jti of the bearer token the principal was resolved from.
	TokenID string
}

// PrincipalFromUser returns an authenticated principal for u.
func PrincipalFromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}

	return &Principal{ID: u.ID, Username: u.Username, Authenticated: true}
}

// SetPrincipal stores p on the request context.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(PrincipalLocalsKey, p)
}

// PrincipalFromContext returns the principal of the request, or nil when none was resolved.
func PrincipalFromContext(c *fiber.Ctx) *Principal {
	p, ok := c.Locals(PrincipalLocalsKey).(*Principal)
	if !ok {
		return nil
	}

	return p
}
