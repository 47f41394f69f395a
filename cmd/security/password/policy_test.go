package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolations(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "valid password",
			password: "Abcd1234",
			want:     nil,
		},
		{
			name:     "weak short lowercase",
			password: "weak",
			want: []string{
				"Password must be at least 8 characters",
				"Password must contain at least one uppercase letter",
				"Password must contain at least one number",
			},
		},
		{
			name:     "missing digit",
			password: "Abcdefgh",
			want: []string{
				"Password must contain at least one number",
			},
		},
		{
			name:     "missing lowercase",
			password: "ABCD1234",
			want: []string{
				"Password must contain at least one lowercase letter",
			},
		},
		{
			name:     "long enough but all digits",
			password: "12345678",
			want: []string{
				"Password must contain at least one uppercase letter",
				"Password must contain at least one lowercase letter",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Violations(tt.password))
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate("Abcd1234"))
	assert.ErrorIs(t, cfg.Validate("weak"), ErrPolicyViolation)
}

func TestViolations_RuneCounting(t *testing.T) {
	cfg := DefaultConfig()

	// 8 multi-byte runes satisfy the length rule.
	pw := "Пароль12" // upper, lower, digits, 8 runes
	assert.Empty(t, cfg.Violations(pw))
}
