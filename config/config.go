/*
Package config loads server configuration from file, environment and
defaults, in that order of increasing precedence for the environment.

PURPOSE:
  One place that knows where the database lives, which port to bind and
  what the accrual tier size is. Everything else receives values, never
  reads configuration itself.

SOURCES:
  1. Built-in defaults (always present)
  2. Optional config.yaml in the working directory or ./config/
  3. Environment variables prefixed FUND_ (e.g. FUND_SERVER_PORT)
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Accrual  AccrualConfig  `mapstructure:"accrual"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AccrualConfig struct {
	// TierSize is the balance increment, in Toman, worth one point per day.
	TierSize int64 `mapstructure:"tier_size"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration. A missing config file is not an error; defaults
// and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("database.path", "./fund.db")
	v.SetDefault("accrual.tier_size", 50_000)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Accrual.TierSize <= 0 {
		return nil, fmt.Errorf("accrual.tier_size must be positive, got %d", cfg.Accrual.TierSize)
	}
	return &cfg, nil
}
