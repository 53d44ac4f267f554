// Package config provides configuration management for the paper trader.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"paper-trader/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Trading    TradingConfig    `mapstructure:"trading"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Scoreboard ScoreboardConfig `mapstructure:"scoreboard"`
}

// TradingConfig holds account configuration.
type TradingConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	DataFile       string  `mapstructure:"data_file"`
}

// RefreshConfig holds watchlist refresh configuration.
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Auto     bool          `mapstructure:"auto"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// ScoreboardConfig holds scoreboard configuration.
type ScoreboardConfig struct {
	DBFile   string `mapstructure:"db_file"`
	Nickname string `mapstructure:"nickname"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/paper-trader"
	}
	return filepath.Join(home, ".config", "paper-trader")
}

// Load loads configuration from the specified directory, falling back to
// defaults when no config file is present. If configDir is empty, the
// default config directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("trading.initial_balance", 100000.0)
	v.SetDefault("trading.data_file", filepath.Join(configDir, "paper_trading_data.json"))
	v.SetDefault("refresh.interval", 20*time.Second)
	v.SetDefault("refresh.auto", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("scoreboard.db_file", filepath.Join(configDir, "scoreboard.db"))
	v.SetDefault("scoreboard.nickname", "player")

	v.SetEnvPrefix("PAPER_TRADER")
	// Nested keys map to env vars with underscores, e.g.
	// trading.initial_balance -> PAPER_TRADER_TRADING_INITIAL_BALANCE.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config.toml")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Trading.InitialBalance <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "trading.initial_balance must be positive")
	}
	if c.Refresh.Interval <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "refresh.interval must be positive")
	}
	return nil
}
