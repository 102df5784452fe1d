// Package config provides configuration loading and validation for the
// inlineq service. Values come from a YAML file overridden by INLINEQ_*
// environment variables, with defaults for everything optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the full application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Inline    InlineConfig    `mapstructure:"inline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type InlineConfig struct {
	// QueryDelay is the minimum spacing between outbound inline queries.
	QueryDelay time.Duration `mapstructure:"query_delay" validate:"min=0,max=1m"`

	// EventBuffer is the per-subscriber capacity of the notification bus.
	EventBuffer int `mapstructure:"event_buffer" validate:"min=1,max=4096"`
}

type SchedulerConfig struct {
	// MaintenanceSchedule is a cron expression (with seconds field) for the
	// periodic database maintenance job.
	MaintenanceSchedule string `mapstructure:"maintenance_schedule" validate:"required"`
}

// LoadConfig reads and validates the configuration. A missing config file is
// not an error; defaults and environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("INLINEQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Unmarshal only sees env values for explicitly bound keys.
	for _, key := range []string{
		"logger.level", "logger.json",
		"telegram.token",
		"database.path",
		"inline.query_delay", "inline.event_buffer",
		"scheduler.maintenance_schedule",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("database.path", "inlineq.db")

	v.SetDefault("inline.query_delay", 3*time.Second)
	v.SetDefault("inline.event_buffer", 64)

	v.SetDefault("scheduler.maintenance_schedule", "0 0 4 * * *")
}
