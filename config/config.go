package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tazhate/noxd/internal/speech"
)

// Config holds the daemon configuration. Values come from an optional YAML
// file plus NOXD_-prefixed environment variables (env wins).
type Config struct {
	DatabasePath string `mapstructure:"database_path"`
	ToneCacheDir string `mapstructure:"tone_cache_dir"`
	ServerPort   string `mapstructure:"server_port"`

	// "cron" keeps weekly triggers alive in-process; "timer" arms only the
	// next occurrence of each trigger; "auto" picks cron when a push
	// notifier is configured and timer otherwise.
	SchedulerBackend string `mapstructure:"scheduler_backend"`

	TimezoneName string `mapstructure:"timezone"`
	Timezone     *time.Location

	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`

	PushoverToken string `mapstructure:"pushover_token"`
	PushoverUser  string `mapstructure:"pushover_user"`

	CloudTTSEndpoint string `mapstructure:"cloud_tts_endpoint"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database_path", "./data/noxd.db")
	v.SetDefault("server_port", "8080")
	v.SetDefault("scheduler_backend", "auto")
	v.SetDefault("timezone", "Local")
	v.SetDefault("cloud_tts_endpoint", speech.DefaultCloudEndpoint)

	v.SetEnvPrefix("NOXD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.SchedulerBackend {
	case "auto", "cron", "timer":
	default:
		return nil, fmt.Errorf("unknown scheduler backend %q", cfg.SchedulerBackend)
	}

	tz, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.TimezoneName, err)
	}
	cfg.Timezone = tz

	return &cfg, nil
}

// HasTelegram reports whether Telegram push delivery is configured.
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// HasPushover reports whether Pushover push delivery is configured.
func (c *Config) HasPushover() bool {
	return c.PushoverToken != "" && c.PushoverUser != ""
}
