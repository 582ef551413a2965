// Package config loads the process settings from the environment, an
// optional YAML file and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adhocore/gronx"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "gaggimate"

type Config struct {
	LogLevelName    string `mapstructure:"log_level"`
	Listen          string `mapstructure:"listen"`
	HassURL         string `mapstructure:"hass_url"`
	HassToken       string `mapstructure:"hass_token"`
	CardConfig      string `mapstructure:"card_config"`
	Brand           string `mapstructure:"brand"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
	FeedRetrySecs   int    `mapstructure:"feed_retry_seconds"`

	LogLevel zapcore.Level `mapstructure:"-"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("hass_url", "")
	v.SetDefault("hass_token", "")
	v.SetDefault("card_config", "card.json")
	v.SetDefault("brand", "gaggimate")
	v.SetDefault("refresh_schedule", "")
	v.SetDefault("feed_retry_seconds", 10)
}

// Load reads GAGGIMATE_* variables and, when CONFIG_FILE points at an
// existing file, that file.
func Load(v *viper.Viper) (*Config, error) {
	// alias HASS_URL / HASS_TOKEN => GAGGIMATE_HASS_*
	for _, key := range []string{"HASS_URL", "HASS_TOKEN"} {
		prefixed := strings.ToUpper(EnvPrefix) + "_" + key
		if val := os.Getenv(key); val != "" && os.Getenv(prefixed) == "" {
			os.Setenv(prefixed, val)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = ParseLevel(cfg.LogLevelName)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config param listen must not be empty")
	}
	if c.CardConfig == "" {
		return errors.New("config param card_config must not be empty")
	}
	if c.RefreshSchedule != "" {
		gron := gronx.New()
		if !gron.IsValid(c.RefreshSchedule) {
			return fmt.Errorf("config param refresh_schedule is not a valid cron expression: %q", c.RefreshSchedule)
		}
	}
	if c.FeedRetrySecs < 1 {
		return errors.New("config param feed_retry_seconds should be >= 1")
	}
	return nil
}

// Redacted is safe to log.
func (c Config) Redacted() Config {
	if c.HassToken != "" {
		c.HassToken = "*redacted*"
	}
	return c
}
