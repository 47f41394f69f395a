package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Policy.MinLength)
	assert.True(t, cfg.Policy.RequireUppercase)
	assert.True(t, cfg.Policy.RequireLowercase)
	assert.True(t, cfg.Policy.RequireDigit)
	assert.Equal(t, uint32(64*1024), cfg.Params.MemoryKiB)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ATRIUM_PASSWORD_MIN_LEN", "12")
	t.Setenv("ATRIUM_PASSWORD_REQUIRE_DIGIT", "false")
	t.Setenv("ATRIUM_ARGON2_ITERATIONS", "4")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Policy.MinLength)
	assert.False(t, cfg.Policy.RequireDigit)
	assert.Equal(t, uint32(4), cfg.Params.Iterations)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("ATRIUM_ARGON2_MEMORY_KIB", "not-a-number")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_MinGreaterThanMax(t *testing.T) {
	t.Setenv("ATRIUM_PASSWORD_MIN_LEN", "64")
	t.Setenv("ATRIUM_PASSWORD_MAX_LEN", "32")
	_, err := FromEnv()
	assert.Error(t, err)
}
