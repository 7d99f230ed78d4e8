package auth

import "errors"

// Sentinel errors returned by the gateway and the admin directory.
var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrMissingToken       = errors.New("auth: missing bearer token")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenInvalid       = errors.New("auth: token invalid")
	ErrForbidden          = errors.New("auth: access denied")
)
