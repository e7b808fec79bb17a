package apperrors

import (
	"errors"
)

var (
	// Login failures: unknown email, wrong password and deactivated account
	// all collapse to this error so the API can't be used to enumerate users
	ErrAuthentication = errors.New("invalid email or password")

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is deactivated")

	// Any token decode failure: malformed, bad signature, wrong kind or expired.
	// Callers must not be able to tell which one happened
	ErrInvalidToken = errors.New("invalid or expired token")

	// Token decodes fine but its entry is gone from the revocation store
	ErrRevokedToken = errors.New("token has been revoked")

	ErrMalformedCredential = errors.New("malformed credential hash")
)
