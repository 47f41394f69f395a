package app

import (
	"strings"
	"testing"
)

func TestValidateSecurityConfig(t *testing.T) {
	t.Setenv("ATRIUM_TOKEN_HMAC_KEY", "")

	// Policy off: nothing to enforce.
	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: false}); err != nil {
		t.Fatalf("policy off: %v", err)
	}

	// Policy on without a key must fail fast.
	err := ValidateSecurityConfig(Config{RequireTokenHMAC: true})
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing-key error, got %v", err)
	}

	// Short key is rejected too.
	t.Setenv("ATRIUM_TOKEN_HMAC_KEY", "short")
	err = ValidateSecurityConfig(Config{RequireTokenHMAC: true})
	if err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected short-key error, got %v", err)
	}

	// A proper key satisfies the policy end to end.
	t.Setenv("ATRIUM_TOKEN_HMAC_KEY", strings.Repeat("k", 32))
	if err := ValidateSecurityConfig(Config{RequireTokenHMAC: true}); err != nil {
		t.Fatalf("valid key: %v", err)
	}
}
