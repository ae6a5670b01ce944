package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	assert.Equal(t, "test", cfg.Env)
	assert.True(t, cfg.UseMemoryStore())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 30, cfg.AccessTTLMin)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "superuser", cfg.Superuser.Username)
	assert.Equal(t, "super.user@example.com", cfg.Superuser.Email)
	assert.Equal(t, "Super User", cfg.Superuser.FullName)
	assert.Equal(t, "passw0rd", cfg.Superuser.Password)
	assert.False(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.AMQPURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DEFAULT_SUPERUSER_USERNAME", "root")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL_SEC", "120")

	cfg := Load()

	assert.Equal(t, 5, cfg.AccessTTLMin)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "root", cfg.Superuser.Username)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
}
