// Package login provides the handler exchanging username and password for a bearer token.
//
// This file defines exported error values used throughout the login flow.
package login

import "github.com/pharmadesk/pharmadesk/internal/apperr"

// ErrMissingCredentials is returned when the username or the password is absent.
var ErrMissingCredentials = apperr.Invalid(`must include "username" and "password"`, nil)
