package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"first.last@sub.example.org",
		"user+tag@example.com",
	}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), "expected valid: %q", s)
	}

	invalid := []string{
		"",
		"   ",
		"not-an-email",
		"@x.com",
		"a@",
		"Name <a@x.com>",
		"a b@x.com",
	}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), "expected invalid: %q", s)
	}
}
