package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreTypePostgres = "postgres"
	StoreTypeMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Store    StoreConfig
	Redis    RedisConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type StoreConfig struct {
	Type string
}

// RedisConfig enables distributed generation locks. An empty address keeps
// locking in-process.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type PayrollConfig struct {
	PensionRate          decimal.Decimal
	HealthRate           decimal.Decimal
	StandardDays         int
	StandardHours        int
	OvertimeMultiplier   decimal.Decimal
	AutoGenerateInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll_settlement"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Store = StoreConfig{
		Type: strings.ToLower(getEnv("STORE_TYPE", StoreTypePostgres)),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	lockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Address:  getEnv("REDIS_ADDRESS", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		LockTTL:  lockTTL,
	}

	// Payroll configuration
	if config.Payroll, err = loadPayroll(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayroll() (PayrollConfig, error) {
	var (
		p   PayrollConfig
		err error
	)

	if p.PensionRate, err = decimal.NewFromString(getEnv("PAYROLL_PENSION_RATE", "0.10")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_PENSION_RATE: %w", err)
	}
	if p.HealthRate, err = decimal.NewFromString(getEnv("PAYROLL_HEALTH_RATE", "0.07")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_HEALTH_RATE: %w", err)
	}
	if p.StandardDays, err = strconv.Atoi(getEnv("PAYROLL_STANDARD_DAYS", "20")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_STANDARD_DAYS: %w", err)
	}
	if p.StandardHours, err = strconv.Atoi(getEnv("PAYROLL_STANDARD_HOURS", "8")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_STANDARD_HOURS: %w", err)
	}
	if p.OvertimeMultiplier, err = decimal.NewFromString(getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.5")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %w", err)
	}
	if p.AutoGenerateInterval, err = time.ParseDuration(getEnv("PAYROLL_AUTO_GENERATE_INTERVAL", "0")); err != nil {
		return p, fmt.Errorf("invalid PAYROLL_AUTO_GENERATE_INTERVAL: %w", err)
	}

	return p, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Store.Type {
	case StoreTypePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q", c.Store.Type)
	}

	p := c.Payroll
	if p.PensionRate.IsNegative() || p.HealthRate.IsNegative() {
		return fmt.Errorf("payroll deduction rates must not be negative")
	}
	if p.PensionRate.Add(p.HealthRate).GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("payroll deduction rates must sum to less than 1")
	}
	if p.StandardDays <= 0 || p.StandardHours <= 0 {
		return fmt.Errorf("PAYROLL_STANDARD_DAYS and PAYROLL_STANDARD_HOURS must be positive")
	}
	if p.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PAYROLL_OVERTIME_MULTIPLIER must be at least 1")
	}
	if p.AutoGenerateInterval < 0 {
		return fmt.Errorf("PAYROLL_AUTO_GENERATE_INTERVAL must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
