package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	devAccessSecret  = "dev-access-secret-change-in-production"
	devRefreshSecret = "dev-refresh-secret-change-in-production"
)

var ErrDefaultSecretInProduction = errors.New("token secrets must be set in production environment")

type Config struct {
	Port           string `validate:"required,numeric"`
	Env            string `validate:"required,oneof=development test production"`
	DatabaseDSN    string
	LogLevel       slog.Level
	BcryptCost     int `validate:"gte=4,lte=31"`
	AllowedOrigins []string
	// TrustProxy makes the client IP come from proxy headers.
	TrustProxy bool
	Token      TokenConfig
}

// TokenConfig holds the secrets and lifetimes for access and refresh tokens.
type TokenConfig struct {
	AccessSecret  string        `validate:"required,min=20"`
	RefreshSecret string        `validate:"required,min=20,nefield=AccessSecret"`
	AccessExpiry  time.Duration `validate:"gt=0"`
	RefreshExpiry time.Duration `validate:"gt=0,gtfield=AccessExpiry"`
}

// IsProduction reports whether the service runs with production cookie and logging policy.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. A .env file, if any, must
// already have been loaded by the caller.
func Load() (Config, error) {
	accessExpiry, err := ParseDuration(getEnv("ACCESS_TOKEN_EXPIRES_IN", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRES_IN: %w", err)
	}
	refreshExpiry, err := ParseDuration(getEnv("REFRESH_TOKEN_EXPIRES_IN", "7d"))
	if err != nil {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_EXPIRES_IN: %w", err)
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return Config{}, fmt.Errorf("BCRYPT_COST: %w", err)
	}

	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("TRUST_PROXY: %w", err)
	}

	env := getEnv("ENV", "development")

	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", defaultLevel))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		Env:            env,
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		LogLevel:       level,
		BcryptCost:     bcryptCost,
		AllowedOrigins: splitOrigins(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		TrustProxy:     trustProxy,
		Token: TokenConfig{
			AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", devAccessSecret),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", devRefreshSecret),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and refuses development secrets in production.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.IsProduction() && (c.Token.AccessSecret == devAccessSecret || c.Token.RefreshSecret == devRefreshSecret) {
		return ErrDefaultSecretInProduction
	}

	return nil
}

// ParseDuration extends time.ParseDuration with a "d" (24h) unit, so values
// like "7d" work alongside "15m" or "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
