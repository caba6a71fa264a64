// Package config provides configuration loading, validation, and management
// for the clinic bot. It handles reading from YAML files, environment
// variables, default values, and validating configuration parameters.
package config

// Config defines the application configuration parameters for all components
// of the bot, including logging, Telegram settings, AI integration, the
// database, the HTTP server, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// AdminChatID is the operator chat that receives booking notifications
	// and may run /broadcast.
	AdminChatID int64 `mapstructure:"admin_chat_id" validate:"required,gt=0"`

	// MaxPhotoBytes caps the size of photos downloaded for AI analysis.
	MaxPhotoBytes int64 `mapstructure:"max_photo_bytes" validate:"gt=0"`
}

// GeminiConfig holds Gemini AI client settings.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ServerConfig holds the health/ops HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// TaskConfig enables and schedules one background task. Schedule is a cron
// expression with an optional seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}
