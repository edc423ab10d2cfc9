package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost, http://10.0.2.2:8000 ,")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, []string{"http://localhost", "http://10.0.2.2:8000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("LLM_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
