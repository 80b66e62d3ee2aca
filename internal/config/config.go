package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ZBIRKA_GENERATOR_TOKEN.
const EnvPrefix = "ZBIRKA"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Path string `mapstructure:"path"` // optional file that receives a copy of all log output
}

// GeneratorConfig holds the remote generator configuration
type GeneratorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GameConfig holds the token economy
type GameConfig struct {
	Cost           int64 `mapstructure:"cost"`
	InitialBalance int64 `mapstructure:"initial_balance"`
}

// HousekeepingConfig holds the periodic maintenance schedule
type HousekeepingConfig struct {
	Schedule string `mapstructure:"schedule"` // cron spec or descriptor such as "@every 1h"
}

// Config is the complete zbirka configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	Generator    GeneratorConfig    `mapstructure:"generator"`
	Game         GameConfig         `mapstructure:"game"`
	Housekeeping HousekeepingConfig `mapstructure:"housekeeping"`
}

var defaults = map[string]any{
	"server.addr":           ":8080",
	"database.path":         "zbirka.sqlite3",
	"log.path":              "",
	"generator.base_url":    "http://localhost:9000",
	"generator.token":       "",
	"generator.timeout":     "30s",
	"game.cost":             10,
	"game.initial_balance":  100,
	"housekeeping.schedule": "@every 1h",
}

// Load reads configuration from configFile (or config.yaml in the working
// directory when empty), .env files in envPath and ZBIRKA_* environment
// variables, in increasing order of precedence.
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper(configFile, envPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key list, so env vars map onto the struct
	// even without a config file.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func loadEnv(envPath string) {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// Validate reports every setting that would keep the server from running.
func (c *Config) Validate() error {
	var errs []error
	if c.Generator.Token == "" {
		errs = append(errs, errors.New("generator.token is required"))
	}
	if c.Generator.BaseURL == "" {
		errs = append(errs, errors.New("generator.base_url is required"))
	}
	if c.Generator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("generator.timeout must be positive, got %s", c.Generator.Timeout))
	}
	if c.Game.Cost <= 0 {
		errs = append(errs, fmt.Errorf("game.cost must be positive, got %d", c.Game.Cost))
	}
	if c.Game.InitialBalance < 0 {
		errs = append(errs, fmt.Errorf("game.initial_balance must not be negative, got %d", c.Game.InitialBalance))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	return errors.Join(errs...)
}
