package auth

import "errors"

var (
	// ErrMissingToken is returned when a request carries neither a bearer token nor a session cookie.
	ErrMissingToken = errors.New("missing session token")

	// ErrInvalidToken is returned when the token does not name a session.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionExpired is returned when the session has passed its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
