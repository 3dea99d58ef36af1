package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int           `env:"PORT"            envDefault:"8080"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string        `env:"DATABASE_URL"    envDefault:"./budget.db"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER"      envDefault:"budget-manager"`
	JWTTTL         time.Duration `env:"JWT_TTL"         envDefault:"24h"`
	UploadDir      string        `env:"UPLOAD_DIR"      envDefault:"./uploads/profile-photos"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY"      envDefault:"true"`

	// Empty disables the sweeper.
	PhotoSweepSchedule string        `env:"PHOTO_SWEEP_SCHEDULE"`
	PhotoSweepGrace    time.Duration `env:"PHOTO_SWEEP_GRACE" envDefault:"1h"`
}

// Load reads a local .env file when present, then parses the environment.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment and validates it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// HTTPAddress returns the address for the HTTP server to bind to.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func (c *Config) normalize() {
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")

	origins := c.CORSOrigins[:0]
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORSOrigins = origins
}
