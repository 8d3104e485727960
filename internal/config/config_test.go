package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/observadores")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 10*time.Minute, cfg.RoleCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.SMS.Timeout)
	assert.Empty(t, cfg.SMS.GatewayURL)
}

func TestLoadParsesLists(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ROLE_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, 30*time.Second, cfg.RoleCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "short secret", key: "JWT_SECRET", val: "curto"},
		{name: "bad port", key: "PORT", val: "abc"},
		{name: "bad ttl", key: "ROLE_CACHE_TTL", val: "dez minutos"},
		{name: "gateway without token", key: "SMS_GATEWAY_URL", val: "https://sms.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("SMS_GATEWAY_TOKEN", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
