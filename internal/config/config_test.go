// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "admin123", cfg.Auth.AdminPassword)
	assert.Equal(t, 20, cfg.RateLimit.LoginLimit)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.True(t, cfg.Auth.UsesDefaultJWTSecret())
}

func TestLoadConfig_TrustedProxiesAndSecret(t *testing.T) {
	t.Setenv("LEDGER_SERVER_TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")
	t.Setenv("LEDGER_AUTH_JWT_SECRET", "rotated-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
	assert.False(t, cfg.Auth.UsesDefaultJWTSecret())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LEDGER_SERVER_PORT", "8081")
	t.Setenv("LEDGER_DATABASE_DRIVER", "postgres")
	t.Setenv("LEDGER_DATABASE_NAME", "ledger_test")
	t.Setenv("LEDGER_AUTH_TOKEN_TTL", "1h")
	t.Setenv("LEDGER_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, ":8081", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "ledger_test", cfg.Database.DB().DBName)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	content := []byte("server:\n  port: 9090\nrate_limit:\n  login_limit: 3\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("LEDGER_CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.RateLimit.LoginLimit)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("LEDGER_DATABASE_DRIVER", "mysql")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
}

func TestValidate(t *testing.T) {
	base := func() AppConfig {
		return AppConfig{
			Server:   ServerConfig{Port: 3000},
			Database: DatabaseConfig{Driver: "sqlite", Path: "ledger.db"},
			Auth:     AuthConfig{JWTSecret: "s", TokenTTL: time.Hour, BcryptCost: 10, AdminPassword: "p"},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"port out of range", func(c *AppConfig) { c.Server.Port = 0 }},
		{"bad trusted proxy", func(c *AppConfig) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }},
		{"sqlite without path", func(c *AppConfig) { c.Database.Path = "" }},
		{"postgres without host", func(c *AppConfig) { c.Database = DatabaseConfig{Driver: "postgres"} }},
		{"empty secret", func(c *AppConfig) { c.Auth.JWTSecret = "" }},
		{"bcrypt cost too low", func(c *AppConfig) { c.Auth.BcryptCost = 1 }},
		{"bad log level", func(c *AppConfig) { c.Logging.Level = "verbose" }},
		{"redis without addr", func(c *AppConfig) { c.Redis = RedisConfig{Enabled: true} }},
	}

	ok := base()
	require.NoError(t, ok.Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
