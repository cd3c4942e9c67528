package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithSecretsFromEnv(t *testing.T) {
	t.Setenv("TEMPLATER_SECURITY_JWTACCESSSECRET", "access")
	t.Setenv("TEMPLATER_SECURITY_JWTREFRESHSECRET", "refresh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.Security.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.JWTRefreshTTL)
	assert.Equal(t, int64(499), cfg.Payment.AmountCents)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.Equal(t, int64(2880), cfg.Queue.MaxDeliveries)
	assert.Equal(t, 720*time.Hour, cfg.Jobs.SessionRetention)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowCORSOrigins)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TEMPLATER_SECURITY_JWTACCESSSECRET", "access")
	t.Setenv("TEMPLATER_SECURITY_JWTREFRESHSECRET", "refresh")
	t.Setenv("TEMPLATER_ENVIRONMENT", "production")
	t.Setenv("TEMPLATER_SECURITY_JWTACCESSTTL", "5m")
	t.Setenv("TEMPLATER_PAYMENT_AMOUNTCENTS", "999")
	t.Setenv("TEMPLATER_HTTP_TRUSTEDPROXIES", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.Security.JWTAccessTTL)
	assert.Equal(t, int64(999), cfg.Payment.AmountCents)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.HTTP.TrustedProxies)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("TEMPLATER_SECURITY_JWTACCESSSECRET", "")
	t.Setenv("TEMPLATER_SECURITY_JWTREFRESHSECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "required")
}

func TestLoadRejectsSharedSecret(t *testing.T) {
	t.Setenv("TEMPLATER_SECURITY_JWTACCESSSECRET", "same")
	t.Setenv("TEMPLATER_SECURITY_JWTREFRESHSECRET", "same")

	_, err := Load()
	assert.ErrorContains(t, err, "must differ")
}
