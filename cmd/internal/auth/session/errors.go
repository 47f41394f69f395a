package session

import "errors"

var (
	// ErrNoToken is returned by Resolve when the caller presented no
	// session token at all.
	ErrNoToken = errors.New("session: no token presented")

	// ErrInvalidCredentials is returned by SignIn for both an unknown
	// email and a wrong password. Callers must not be able to tell the
	// two apart.
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrSessionNotFound is returned when a presented token matches no
	// stored session.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionExpired is returned when a presented token matched a
	// stored session whose expiry has passed. The session row is
	// removed as a side effect.
	ErrSessionExpired = errors.New("session: expired")

	// ErrConfig reports an invalid session configuration value.
	ErrConfig = errors.New("session: invalid configuration")
)
