package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15m", want: 15 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: " 1d ", want: 24 * time.Hour},
		{in: "xd", wantErr: true},
		{in: "-2d", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_DSN", "LOG_LEVEL", "BCRYPT_COST", "CORS_ORIGIN",
		"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET", "ACCESS_TOKEN_EXPIRES_IN", "REFRESH_TOKEN_EXPIRES_IN", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Token.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Token.RefreshExpiry)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.TrustProxy)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ORIGIN", "https://app.example.com, http://localhost:3000,")
	t.Setenv("ACCESS_TOKEN_EXPIRES_IN", "5m")
	t.Setenv("REFRESH_TOKEN_EXPIRES_IN", "30d")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret-0123456789")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-0123456789")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Token.AccessExpiry)
	assert.Equal(t, 30*24*time.Hour, cfg.Token.RefreshExpiry)
	assert.True(t, cfg.TrustProxy)
}

func TestLoadRejectsInvalidTrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "sometimes")

	_, err := Load()
	assert.ErrorContains(t, err, "TRUST_PROXY")
}

func TestLoadRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	_, err := Load()
	assert.True(t, errors.Is(err, ErrDefaultSecretInProduction), "got %v", err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:       "5000",
		Env:        "development",
		BcryptCost: 10,
		Token: TokenConfig{
			AccessSecret:  "access-secret-0123456789",
			RefreshSecret: "refresh-secret-0123456789",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"short access secret", func(c *Config) { c.Token.AccessSecret = "short" }},
		{"shared secrets", func(c *Config) { c.Token.RefreshSecret = c.Token.AccessSecret }},
		{"refresh shorter than access", func(c *Config) { c.Token.RefreshExpiry = time.Second }},
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }},
		{"non numeric port", func(c *Config) { c.Port = "http" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
