package password

import "errors"

// Public, stable errors for callers.
var (
	ErrPolicyViolation = errors.New("password policy violation")
	ErrInvalidHash     = errors.New("invalid password hash")
)
