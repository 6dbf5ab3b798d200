// Package config loads service configuration with viper.
//
// Sources, lowest precedence first: defaults, configs/config.yaml (or an
// explicit file), then BENEFITS_* environment variables, where nested keys
// join with underscores (BENEFITS_SERVER_PORT, BENEFITS_REDIS_ADDR).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BENEFITS"

// Usage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Usage     UsageConfig     `mapstructure:"usage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // SQLite file, ":memory:" for tests
}

// UsageConfig selects where usage records live. Cards always live in the
// SQLite database unless the backend is memory.
type UsageConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console, json
	OutputPath string `mapstructure:"output_path"`
}

type CatalogConfig struct {
	Path   string `mapstructure:"path"` // empty: built-in catalog
	Strict bool   `mapstructure:"strict"`
}

type RemindersConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	DaysBefore int           `mapstructure:"days_before"`
}

// Load reads configuration. An empty path searches ./configs, ../configs
// and the working directory for config.yaml; a missing file is not an
// error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper can't type-check.
func (c *Config) Validate() error {
	switch c.Usage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("usage.backend: unknown backend %q", c.Usage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range: %d", c.Server.Port)
	}
	if c.Reminders.Enabled && c.Reminders.Interval <= 0 {
		return fmt.Errorf("reminders.interval: must be positive when reminders are enabled")
	}
	if c.Reminders.DaysBefore < 0 {
		return fmt.Errorf("reminders.days_before: must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.path", "./data/benefits.db")

	v.SetDefault("usage.backend", BackendSQLite)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.strict", true)

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.interval", "24h")
	v.SetDefault("reminders.days_before", 7)
}
