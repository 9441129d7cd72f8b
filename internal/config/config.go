package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BoticordToken          string        `mapstructure:"boticord_token"`
	BoticordAPIVersion     int           `mapstructure:"boticord_api_version"`
	BoticordBaseURL        string        `mapstructure:"boticord_base_url"`
	BoticordTimeoutSeconds int64         `mapstructure:"boticord_timeout_seconds"`
	BoticordTimeout        time.Duration `mapstructure:"-"`

	BotID               string        `mapstructure:"bot_id"`
	DiscordToken        string        `mapstructure:"discord_token"`
	PostIntervalSeconds int64         `mapstructure:"post_interval"`
	PostInterval        time.Duration `mapstructure:"-"`
	PublishersFile      string        `mapstructure:"publishers_file"`

	// Used when no discord token is configured.
	StaticServers uint64 `mapstructure:"static_servers"`
	StaticShards  uint64 `mapstructure:"static_shards"`
	StaticUsers   uint64 `mapstructure:"static_users"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	RedisURL               string        `mapstructure:"redis_url"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "boticord-statsposter")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("boticord_token", "")
	v.SetDefault("boticord_api_version", 1)
	v.SetDefault("boticord_base_url", "https://api.boticord.top")
	v.SetDefault("boticord_timeout_seconds", 10)
	v.SetDefault("bot_id", "")
	v.SetDefault("discord_token", "")
	v.SetDefault("post_interval", 900) // seconds
	v.SetDefault("publishers_file", "")
	v.SetDefault("static_servers", 0)
	v.SetDefault("static_shards", 1)
	v.SetDefault("static_users", 0)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/stats.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("storage_ttl_seconds", 0) // derived from post_interval
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	// AutomaticEnv only resolves keys that have a default.
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if supported := boticord.SupportedVersions(); !slices.Contains(supported, cfg.BoticordAPIVersion) {
		return nil, fmt.Errorf("invalid boticord_api_version %d (supported: %v)", cfg.BoticordAPIVersion, supported)
	}
	if cfg.BoticordTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid boticord_timeout_seconds (must not be negative)")
	}
	cfg.BoticordTimeout = time.Duration(cfg.BoticordTimeoutSeconds) * time.Second

	if cfg.PostIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid post_interval (must be positive seconds)")
	}
	cfg.PostInterval = time.Duration(cfg.PostIntervalSeconds) * time.Second

	// A remembered snapshot must expire before the next tick, so unchanged
	// stats are still submitted once per post_interval.
	switch {
	case cfg.StorageTTLSeconds < 0:
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must not be negative)")
	case cfg.StorageTTLSeconds == 0:
		cfg.StorageTTL = cfg.PostInterval * 9 / 10
	case cfg.StorageTTLSeconds >= cfg.PostIntervalSeconds:
		return nil, fmt.Errorf("invalid storage_ttl_seconds %d (must be shorter than post_interval %d)", cfg.StorageTTLSeconds, cfg.PostIntervalSeconds)
	default:
		cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// StorageLocation returns the backend address for the configured storage type.
func (c Config) StorageLocation() string {
	if strings.EqualFold(strings.TrimSpace(c.StorageType), "redis") {
		return c.RedisURL
	}
	return c.BBoltPath
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.BoticordToken != "" {
		c.BoticordToken = "***"
	}
	if c.DiscordToken != "" {
		c.DiscordToken = "***"
	}
	if c.RedisURL != "" {
		c.RedisURL = "***"
	}
	return c
}
