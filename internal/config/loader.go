package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Task names recognized by the scheduler registry.
const (
	TaskReminderSweep   = "reminder_sweep"
	TaskSlotMaintenance = "slot_maintenance"
)

// LoadConfig loads and validates configuration from:
//  1. Default values
//  2. The YAML file at path (optional)
//  3. BOT_* environment variables (e.g. BOT_TELEGRAM_TOKEN)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound, so the
	// required secrets get explicit bindings.
	for _, key := range []string{"telegram.token", "telegram.admin_chat_id", "gemini.api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults plus env cover it.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("telegram.max_photo_bytes", int64(19*1024*1024))

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.max_retries", 3)
	v.SetDefault("gemini.retry_delay_seconds", 5)

	v.SetDefault("database.path", "dentalbot.db")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		TaskReminderSweep:   {Enabled: true, Schedule: "0 0 9 * * *"},
		TaskSlotMaintenance: {Enabled: true, Schedule: "0 0 * * * *"},
	})
}
