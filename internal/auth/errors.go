package auth

import (
	"errors"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
)

var (
	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = apperr.Invalid("invalid old password", nil)

	// ErrInvalidCredentials is returned when the username is unknown or the password is wrong.
	ErrInvalidCredentials = apperr.Unauthenticatedf("unable to log in with provided credentials")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = apperr.Unauthenticatedf("user account is disabled")

	// ErrInvalidToken is returned when a bearer token cannot be parsed or verified.
	ErrInvalidToken = apperr.Unauthenticatedf("invalid or expired token")

	// ErrTokenRevoked is returned when a bearer token was revoked by logout.
	ErrTokenRevoked = apperr.Unauthenticatedf("token has been revoked")

	// ErrEmptySecret is returned when the token signing secret is not configured.
	ErrEmptySecret = errors.New("token secret can not be empty")
)
