package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Risk      RiskConfig
	Jobs      JobsConfig
	PriceFeed PriceFeedConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string
	PlatformFeePct decimal.Decimal
}

// RiskConfig holds margin level thresholds in percent.
// Must satisfy Safe > Warning > MarginCall > Liquidation.
type RiskConfig struct {
	SafeLevel        decimal.Decimal
	WarningLevel     decimal.Decimal
	MarginCallLevel  decimal.Decimal
	LiquidationLevel decimal.Decimal
}

// JobsConfig holds sweep intervals
type JobsConfig struct {
	FinalizeInterval time.Duration
	RiskInterval     time.Duration
}

// PriceFeedConfig holds market data provider settings
type PriceFeedConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "trading_contests"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			PlatformFeePct: getEnvDecimal("PLATFORM_FEE_PCT", "10"),
		},
		Risk: RiskConfig{
			SafeLevel:        getEnvDecimal("RISK_SAFE_LEVEL", "200"),
			WarningLevel:     getEnvDecimal("RISK_WARNING_LEVEL", "150"),
			MarginCallLevel:  getEnvDecimal("RISK_MARGIN_CALL_LEVEL", "120"),
			LiquidationLevel: getEnvDecimal("RISK_LIQUIDATION_LEVEL", "100"),
		},
		Jobs: JobsConfig{
			FinalizeInterval: getEnvDuration("FINALIZE_SWEEP_INTERVAL", 30*time.Second),
			RiskInterval:     getEnvDuration("RISK_SWEEP_INTERVAL", 5*time.Second),
		},
		PriceFeed: PriceFeedConfig{
			BaseURL:  getEnv("PRICE_FEED_URL", "https://api.exchangerate.host"),
			CacheTTL: getEnvDuration("PRICE_FEED_CACHE_TTL", 2*time.Second),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if err := config.Risk.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the thresholds are strictly ordered.
func (r RiskConfig) Validate() error {
	if !r.SafeLevel.GreaterThan(r.WarningLevel) ||
		!r.WarningLevel.GreaterThan(r.MarginCallLevel) ||
		!r.MarginCallLevel.GreaterThan(r.LiquidationLevel) {
		return fmt.Errorf("risk thresholds must satisfy safe > warning > margin_call > liquidation")
	}
	if r.LiquidationLevel.IsNegative() {
		return fmt.Errorf("liquidation level must not be negative")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	raw := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d, _ = decimal.NewFromString(defaultValue)
	}
	return d
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// DefaultRisk returns the built-in thresholds, used by tests and by
// callers constructed without a full Config.
func DefaultRisk() RiskConfig {
	return RiskConfig{
		SafeLevel:        decimal.NewFromInt(200),
		WarningLevel:     decimal.NewFromInt(150),
		MarginCallLevel:  decimal.NewFromInt(120),
		LiquidationLevel: decimal.NewFromInt(100),
	}
}
