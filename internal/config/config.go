package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediplus/clinic/internal/platform/db"
)

type Config struct {
	Env                    string `mapstructure:"ENV"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	DBSchema               string `mapstructure:"DB_SCHEMA"`
	DBMaxConns             int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns             int32  `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir          string `mapstructure:"MIGRATIONS_DIR"`
	AutoMigrate            bool   `mapstructure:"AUTO_MIGRATE"`
	BcryptCost             int    `mapstructure:"BCRYPT_COST"`
	LoginAttemptsPerMinute int    `mapstructure:"LOGIN_ATTEMPTS_PER_MINUTE"`
	LoginBurst             int    `mapstructure:"LOGIN_BURST"`
	DataDir                string `mapstructure:"DATA_DIR"`
}

var keys = []string{
	"ENV",
	"LOG_LEVEL",
	"DATABASE_URL",
	"DB_SCHEMA",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"MIGRATIONS_DIR",
	"AUTO_MIGRATE",
	"BCRYPT_COST",
	"LOGIN_ATTEMPTS_PER_MINUTE",
	"LOGIN_BURST",
	"DATA_DIR",
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded into the environment first, and configFile, when not
// empty, is read by viper as an additional source (YAML, TOML or JSON).
// Environment variables win over both.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_SCHEMA", "mediplus")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("MIGRATIONS_DIR", "")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("LOGIN_ATTEMPTS_PER_MINUTE", 10)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("DATA_DIR", "./datos")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is usable before any connection is
// opened.
func (c *Config) Validate() error {
	if !db.ValidSchemaName(c.DBSchema) {
		return fmt.Errorf("DB_SCHEMA must be a plain SQL identifier, got %q", c.DBSchema)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.LoginAttemptsPerMinute <= 0 {
		return fmt.Errorf("LOGIN_ATTEMPTS_PER_MINUTE must be positive, got %d", c.LoginAttemptsPerMinute)
	}
	if c.LoginBurst <= 0 {
		return fmt.Errorf("LOGIN_BURST must be positive, got %d", c.LoginBurst)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}
