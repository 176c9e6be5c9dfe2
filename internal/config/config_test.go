package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.RateLimit.ClickRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.ClickWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.AdminExpiry)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	cfg.JWT.Secret = "s"
	cfg.Admin.PasswordHash = "$2a$10$abc"
	assert.NoError(t, cfg.Validate())
}

func TestCloudinaryEnabled(t *testing.T) {
	assert.False(t, CloudinaryConfig{CloudName: "demo"}.Enabled())
	assert.True(t, CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"}.Enabled())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
