// Package auth provides the bearer token middleware of the web application.
//
// The middleware resolves the request principal from an "Authorization: Bearer <token>"
// header and stores it on the request with auth.SetPrincipal. It performs the following:
//   - Requests without the header pass through anonymously
//   - Malformed, expired or wrongly signed tokens are answered with 401
//   - Tokens revoked by a logout are answered with 401
//   - Tokens of deleted or disabled users are answered with 401
//
// Whether a principal is required at all is decided per route by auth.RequireAuthenticated
// and auth.RequirePermission.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{DB: db, Issuer: issuer, Sessions: sessions}))
package auth
