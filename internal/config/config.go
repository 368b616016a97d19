// Package config loads add-on configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXPMULT_"

// DefaultPath is where the config file is looked up unless EXPMULT_CONFIG is set.
const DefaultPath = "config/expmultiplier.yaml"

// Plugin holds all configuration for the multiplier add-on.
type Plugin struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"` // debug, info, warn, error

	// Experience service the add-on depends on
	ExperienceService string        `yaml:"experience_service" env:"EXPERIENCE_SERVICE"`
	ServiceCheckDelay time.Duration `yaml:"service_check_delay" env:"SERVICE_CHECK_DELAY"`

	// Command
	Permission          string `yaml:"permission" env:"PERMISSION"`
	BonusExpOnPlayerSet int    `yaml:"bonus_exp_on_player_set" env:"BONUS_EXP_ON_PLAYER_SET"` // 0 disables

	// Interception
	SkipUnityMultiplier bool   `yaml:"skip_unity_multiplier" env:"SKIP_UNITY_MULTIPLIER"`
	DoubleExpOnCommand  bool   `yaml:"double_exp_on_command" env:"DOUBLE_EXP_ON_COMMAND"`
	GrantCommand        string `yaml:"grant_command" env:"GRANT_COMMAND"`

	// Expiry polling
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`

	MessagesPath string `yaml:"messages_path" env:"MESSAGES_PATH"`

	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// Default returns Plugin config with sensible defaults.
func Default() Plugin {
	return Plugin{
		LogLevel:            "info",
		ExperienceService:   "AkariLevel",
		ServiceCheckDelay:   1 * time.Second, // 20 server ticks
		Permission:          "akarilevel.setmultiplier",
		BonusExpOnPlayerSet: 100,
		SkipUnityMultiplier: true,
		DoubleExpOnCommand:  true,
		GrantCommand:        "/akarilevel",
		TickInterval:        1 * time.Second,
		MessagesPath:        "config/messages.yml",
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "expmult",
			Password: "expmult",
			DBName:   "expmult",
			SSLMode:  "disable",
		},
	}
}

// Path returns the config file path, honouring EXPMULT_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads config from a YAML file, then applies EXPMULT_* environment overrides.
// If the file doesn't exist, defaults are used.
func Load(path string) (Plugin, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Plugin) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.ServiceCheckDelay < 0 {
		errs = append(errs, fmt.Errorf("service_check_delay must not be negative, got %s", c.ServiceCheckDelay))
	}
	if c.BonusExpOnPlayerSet < 0 {
		errs = append(errs, fmt.Errorf("bonus_exp_on_player_set must not be negative, got %d", c.BonusExpOnPlayerSet))
	}
	if c.ExperienceService == "" {
		errs = append(errs, errors.New("experience_service must be set"))
	}
	if c.Permission == "" {
		errs = append(errs, errors.New("permission must be set"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLogLevel maps a config log level to slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", level)
	}
}
