// Package config loads runtime configuration from environment variables
// (and an optional .env file for local development).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const devJWTSecret = "change-me-in-production"

// Config holds all runtime configuration. Every field maps to one env var.
type Config struct {
	// Server
	Env      string `mapstructure:"APP_ENV"` // development | production
	Port     int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	ShopName string `mapstructure:"SHOP_NAME"`

	// Database
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	DBAcquireTimeout   time.Duration `mapstructure:"DB_ACQUIRE_TIMEOUT"`
	DBTimeZone         string        `mapstructure:"DB_TIMEZONE"`
	TxStatementTimeout time.Duration `mapstructure:"TX_STATEMENT_TIMEOUT"`
	AutoMigrate        bool          `mapstructure:"AUTO_MIGRATE"`

	// Redis (optional; empty disables the report cache and event pub/sub)
	RedisURL       string        `mapstructure:"REDIS_URL"`
	ReportCacheTTL time.Duration `mapstructure:"REPORT_CACHE_TTL"`
	EventsChannel  string        `mapstructure:"EVENTS_CHANNEL"`

	// Auth
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	// Billing
	TaxRate         float64 `mapstructure:"TAX_RATE"` // percent
	BillPrefix      string  `mapstructure:"BILL_PREFIX"`
	BillNumberWidth int     `mapstructure:"BILL_NUMBER_WIDTH"`
	DiscountPolicy  string  `mapstructure:"DISCOUNT_POLICY"` // CEL expression

	// Idempotency
	IdempotencyEnabled bool          `mapstructure:"IDEMPOTENCY_ENABLED"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	// SMTP (optional; empty host disables receipt emails)
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	// Worker
	OutboxPollInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize    int           `mapstructure:"OUTBOX_BATCH_SIZE"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; absence is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHOP_NAME", "Shop POS")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_ACQUIRE_TIMEOUT", 5*time.Second)
	v.SetDefault("DB_TIMEZONE", "")
	v.SetDefault("TX_STATEMENT_TIMEOUT", 30*time.Second)
	v.SetDefault("AUTO_MIGRATE", true)

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REPORT_CACHE_TTL", time.Minute)
	v.SetDefault("EVENTS_CHANNEL", "shoppos:events")

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_TTL", 24*time.Hour)

	v.SetDefault("TAX_RATE", 18)
	v.SetDefault("BILL_PREFIX", "INV")
	v.SetDefault("BILL_NUMBER_WIDTH", 6)
	v.SetDefault("DISCOUNT_POLICY", "discount <= subtotal")

	v.SetDefault("IDEMPOTENCY_ENABLED", true)
	v.SetDefault("IDEMPOTENCY_TTL", 24*time.Hour)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("OUTBOX_POLL_INTERVAL", time.Second)
	v.SetDefault("OUTBOX_BATCH_SIZE", 50)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DatabaseURL) == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		problems = append(problems, "JWT_SECRET must be set in production")
	}
	if c.TaxRate < 0 {
		problems = append(problems, "TAX_RATE must not be negative")
	}
	if c.BillNumberWidth <= 0 {
		problems = append(problems, "BILL_NUMBER_WIDTH must be positive")
	}
	if strings.TrimSpace(c.BillPrefix) == "" {
		problems = append(problems, "BILL_PREFIX is required")
	}
	if c.DBMinConns > c.DBMaxConns {
		problems = append(problems, "DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TaxRateDecimal returns TAX_RATE as a decimal percent.
func (c *Config) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRate)
}

// SMTPEnabled reports whether receipt emails can be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
