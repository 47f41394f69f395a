// Package identity implements Atrium's identity foundation.
//
// It contains the canonical User model, email normalization/validation,
// and the credential store boundary used by the session subsystem.
//
// This package is intentionally dependency-light and security-first.
package identity
