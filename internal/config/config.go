// Package config loads aura-cli settings from config.yaml and AURA_*
// environment variables and bootstraps the global logger.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment override (AURA_SERVER_PORT).
const EnvPrefix = "AURA"

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Farm      FarmConfig      `yaml:"farm" mapstructure:"farm"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RefreshRate  float64  `yaml:"refresh_rate" mapstructure:"refresh_rate"`
	RefreshBurst int      `yaml:"refresh_burst" mapstructure:"refresh_burst"`
}

// FarmConfig configures farm record generation.
type FarmConfig struct {
	FixturePath        string `yaml:"fixture_path" mapstructure:"fixture_path"` // empty = embedded parcels
	LatencyMS          int    `yaml:"latency_ms" mapstructure:"latency_ms"`
	Seed               uint64 `yaml:"seed" mapstructure:"seed"` // 0 = non-deterministic
	RefreshConcurrency int    `yaml:"refresh_concurrency" mapstructure:"refresh_concurrency"`
}

// StoreConfig configures the snapshot backend.
type StoreConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL  string `yaml:"database_url" mapstructure:"database_url"`
	HistoryLimit int    `yaml:"history_limit" mapstructure:"history_limit"`
}

// MapConfig configures external map links.
type MapConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Zoom    int    `yaml:"zoom" mapstructure:"zoom"`
}

// AnthropicConfig holds Anthropic API settings for the crop advisor.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Consecutive upstream failures before advice calls are short-circuited,
	// and how long they stay short-circuited.
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.refresh_rate", 1.0)
	v.SetDefault("server.refresh_burst", 3)
	v.SetDefault("farm.fixture_path", "")
	v.SetDefault("farm.latency_ms", 500)
	v.SetDefault("farm.seed", 0)
	v.SetDefault("farm.refresh_concurrency", 4)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.history_limit", 20)
	v.SetDefault("map.base_url", "https://www.google.com/maps")
	v.SetDefault("map.zoom", 14)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("anthropic.breaker_threshold", 3)
	v.SetDefault("anthropic.breaker_cooldown", "30s")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "serve", "advise" and "cli".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RefreshRate <= 0 {
			problems = append(problems, "server.refresh_rate must be > 0")
		}
		if c.Server.RefreshBurst < 1 {
			problems = append(problems, "server.refresh_burst must be >= 1")
		}
	case "advise":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "cli":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "memory":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, fmt.Sprintf("store.database_url is required for driver %s", c.Store.Driver))
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q must be memory, sqlite or postgres", c.Store.Driver))
	}

	if c.Farm.LatencyMS < 0 {
		problems = append(problems, "farm.latency_ms must be >= 0")
	}
	if c.Farm.RefreshConcurrency < 1 || c.Farm.RefreshConcurrency > 32 {
		problems = append(problems, "farm.refresh_concurrency must be between 1 and 32")
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 21 {
		problems = append(problems, "map.zoom must be between 1 and 21")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
