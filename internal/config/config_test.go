package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORE_TYPE", "memory")
	for _, key := range []string{"APP_PORT", "JWT_ACCESS_EXPIRATION_TIME", "REDIS_ADDRESS", "REDIS_LOCK_TTL", "PAYROLL_PENSION_RATE", "PAYROLL_HEALTH_RATE", "PAYROLL_STANDARD_DAYS", "PAYROLL_STANDARD_HOURS", "PAYROLL_OVERTIME_MULTIPLIER", "PAYROLL_AUTO_GENERATE_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "1h", cfg.JWT.AccessExpiration)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.True(t, decimal.RequireFromString("0.10").Equal(cfg.Payroll.PensionRate))
	assert.True(t, decimal.RequireFromString("0.07").Equal(cfg.Payroll.HealthRate))
	assert.Equal(t, 20, cfg.Payroll.StandardDays)
	assert.Equal(t, 8, cfg.Payroll.StandardHours)
	assert.True(t, decimal.RequireFromString("1.5").Equal(cfg.Payroll.OvertimeMultiplier))
	assert.Equal(t, time.Duration(0), cfg.Payroll.AutoGenerateInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "payroll")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("PAYROLL_PENSION_RATE", "0.11")
	t.Setenv("PAYROLL_AUTO_GENERATE_INTERVAL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, decimal.RequireFromString("0.11").Equal(cfg.Payroll.PensionRate))
	assert.Equal(t, 24*time.Hour, cfg.Payroll.AutoGenerateInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/payroll?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("PAYROLL_HEALTH_RATE", "seven")

	_, err := Load()
	assert.ErrorContains(t, err, "PAYROLL_HEALTH_RATE")
}

func validConfig() Config {
	return Config{
		JWT:   JWTConfig{Secret: "secret", AccessExpiration: "1h"},
		Store: StoreConfig{Type: StoreTypeMemory},
		Payroll: PayrollConfig{
			PensionRate:        decimal.RequireFromString("0.10"),
			HealthRate:         decimal.RequireFromString("0.07"),
			StandardDays:       20,
			StandardHours:      8,
			OvertimeMultiplier: decimal.RequireFromString("1.5"),
		},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"postgres without password", func(c *Config) { c.Store.Type = StoreTypePostgres }, "DB_PASSWORD"},
		{"unknown store", func(c *Config) { c.Store.Type = "mongo" }, "STORE_TYPE"},
		{"negative rate", func(c *Config) { c.Payroll.HealthRate = decimal.RequireFromString("-0.01") }, "negative"},
		{"rates reach one", func(c *Config) { c.Payroll.PensionRate = decimal.RequireFromString("0.93") }, "less than 1"},
		{"zero standard days", func(c *Config) { c.Payroll.StandardDays = 0 }, "must be positive"},
		{"multiplier below one", func(c *Config) { c.Payroll.OvertimeMultiplier = decimal.RequireFromString("0.5") }, "at least 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.App.LogLevel = "DEBUG"
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	cfg.App.LogLevel = ""
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
