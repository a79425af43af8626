package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 19, cfg.IVAPorcentaje)
	assert.Equal(t, 5, cfg.UmbralBajoStock)
	assert.Equal(t, 8, cfg.JWTExpirationHours)
	assert.Equal(t, "Stock Master", cfg.BusinessName)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 1000, cfg.RateLimitPerMinute)
	assert.Equal(t, 20, cfg.LoginRateLimitPerMinute)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IVA_PORCENTAJE", "21")
	t.Setenv("UMBRAL_BAJO_STOCK", "10")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://caja.tienda.com, https://admin.tienda.com,")
	t.Setenv("LOGIN_RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.IVAPorcentaje)
	assert.Equal(t, 10, cfg.UmbralBajoStock)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []string{"https://caja.tienda.com", "https://admin.tienda.com"}, cfg.CORSOrigins())
	assert.Equal(t, 5, cfg.LoginRateLimitPerMinute)
}
