package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the planner reads.
const EnvPrefix = "MENU_PLANNER"

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string `mapstructure:"database_path"`
	PlanSource   string `mapstructure:"plan_source"`
	ArchivePath  string `mapstructure:"archive_path"`

	// Generation parameters
	AntiRepetitionDays  int     `mapstructure:"anti_repetition_days"`
	BalancedMaxCalories float64 `mapstructure:"balanced_max_calories"`
	ExpressMaxMinutes   int     `mapstructure:"express_max_minutes"`
	QuickMaxMinutes     int     `mapstructure:"quick_max_minutes"`

	// Recipe selection at the boundary
	FilterBySeason bool     `mapstructure:"filter_by_season"`
	DishTypes      []string `mapstructure:"dish_types"`

	// Persistence sink
	SinkURL        string `mapstructure:"sink_url"`
	SinkAdminKey   string `mapstructure:"sink_admin_key"`
	SinkRelationID string `mapstructure:"sink_relation_id"`

	// Telegram Config
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   int64  `mapstructure:"telegram_chat_id"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	return Load("")
}

// Load reads an optional YAML file and overlays environment variables on top of it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/menu-planner.db")
	v.SetDefault("plan_source", "")
	v.SetDefault("archive_path", "data/menus")

	v.SetDefault("anti_repetition_days", 14)
	v.SetDefault("balanced_max_calories", 650)
	v.SetDefault("express_max_minutes", 15)
	v.SetDefault("quick_max_minutes", 30)

	v.SetDefault("filter_by_season", true)
	v.SetDefault("dish_types", []string{})

	v.SetDefault("sink_url", "")
	v.SetDefault("sink_admin_key", "")
	v.SetDefault("sink_relation_id", "")

	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_chat_id", 0)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Validate rejects configurations the generator cannot work with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}
	if c.AntiRepetitionDays < 0 {
		return fmt.Errorf("anti_repetition_days must be >= 0, got %d", c.AntiRepetitionDays)
	}
	if c.BalancedMaxCalories <= 0 {
		return fmt.Errorf("balanced_max_calories must be > 0, got %v", c.BalancedMaxCalories)
	}
	if c.ExpressMaxMinutes <= 0 || c.QuickMaxMinutes <= 0 {
		return errors.New("express_max_minutes and quick_max_minutes must be > 0")
	}
	if c.SinkURL != "" && c.SinkAdminKey == "" {
		return errors.New("sink_admin_key is required when sink_url is set")
	}
	return nil
}

// SinkEnabled reports whether generated menus should be pushed to the remote sink.
func (c *Config) SinkEnabled() bool {
	return c.SinkURL != ""
}

// TelegramEnabled reports whether menus should be announced on Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
