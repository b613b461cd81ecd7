// Package auth provides authentication and authorization for the pharmacy backend.
//
// # Authorization
//
// Service.Authorize is the single decision point for every protected operation:
//   - an anonymous or missing principal is denied
//   - a principal holding the role named "admin" is allowed (admin bypass)
//   - any other principal is allowed when one of its roles grants the permission code
//
// There is no role hierarchy. Grants are read from the user_roles and role_permissions
// tables through the Checker interface; DBChecker is the gorm implementation. The
// users.role column is a display label and is never consulted.
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - RequireAuthenticated: reject requests without a principal (401)
//   - RequirePermission: reject requests whose principal is not authorized (403)
//
// The principal is resolved earlier in the chain by the bearer token middleware of
// internal/web/middleware/auth and stored under PrincipalLocalsKey.
//
// # Tokens
//
// TokenIssuer signs and verifies HS256 bearer tokens. Every token carries a random jti
// so a single token can be revoked on logout.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Post("/api/rbac/roles",
//	    auth.RequirePermission(authService, auth.PermRBACRolesCreate),
//	    handler,
//	)
package auth
