package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port               int    `env:"PORT" envDefault:"5500"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	JWTSecret          string `env:"JWT_SECRET,required"`
	ResetBaseURL       string `env:"RESET_BASE_URL" envDefault:""`
	UploadDir          string `env:"UPLOAD_DIR" envDefault:"uploads"`
	SessionTTLSeconds  int    `env:"SESSION_TTL_SECONDS" envDefault:"86400"`
	ResetTTLSeconds    int    `env:"RESET_TOKEN_TTL_SECONDS" envDefault:"600"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) ResetTTL() time.Duration {
	return time.Duration(c.ResetTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BaseURL is the prefix used when building password-reset links. When
// RESET_BASE_URL is unset the server falls back to its own local address.
func (c *Config) BaseURL() string {
	if c.ResetBaseURL != "" {
		return strings.TrimSuffix(c.ResetBaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c *Config) Validate(isProduction bool) error {
	if c.ResetTTLSeconds <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL_SECONDS must be positive")
	}
	if c.SessionTTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
