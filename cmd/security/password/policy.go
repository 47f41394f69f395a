package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Violations reports every policy rule the password breaks, in a stable
// order, as user-facing messages. An empty slice means the password passes.
// It does not mutate input.
func (c Config) Violations(password string) []string {
	var out []string

	// Count characters (runes), not bytes, to be user-friendly.
	n := utf8.RuneCountInString(password)

	if n < c.Policy.MinLength {
		out = append(out, fmt.Sprintf("Password must be at least %d characters", c.Policy.MinLength))
	}
	if n > c.Policy.MaxLength {
		out = append(out, fmt.Sprintf("Password must be at most %d characters", c.Policy.MaxLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if c.Policy.RequireUppercase && !hasUpper {
		out = append(out, "Password must contain at least one uppercase letter")
	}
	if c.Policy.RequireLowercase && !hasLower {
		out = append(out, "Password must contain at least one lowercase letter")
	}
	if c.Policy.RequireDigit && !hasDigit {
		out = append(out, "Password must contain at least one number")
	}

	return out
}

// Validate checks password policy, returning ErrPolicyViolation if any rule
// is broken. Callers that need the individual messages use Violations.
func (c Config) Validate(password string) error {
	if len(c.Violations(password)) > 0 {
		return ErrPolicyViolation
	}
	return nil
}
