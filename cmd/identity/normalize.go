package identity

import (
	"net/mail"
	"strings"
)

// NormalizeEmail performs case-insensitive canonicalization.
// The normalized form is the uniqueness key; the original casing is kept
// for display. The policy is fixed at creation time.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether s is a syntactically valid bare email address
// (no display name, no angle brackets).
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject "Name <a@b>" forms; only the bare address is acceptable input.
	return addr.Address == s
}
