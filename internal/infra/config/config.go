package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend identifiers accepted by blacklist.storage.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Blacklist BlacklistSettings `mapstructure:"blacklist"`
}

type AppSettings struct {
	Name               string   `mapstructure:"name"`
	Env                string   `mapstructure:"env"`
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// RedisSettings configures the Redis connection used when the blacklist
// storage backend is "redis".
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// BlacklistSettings configures the revocation engine and its storage.
type BlacklistSettings struct {
	Storage         string        `mapstructure:"storage"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	AutoCleanup     bool          `mapstructure:"auto_cleanup"`
	MaxEntries      int           `mapstructure:"max_entries"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("REVOKE")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.cors_allowed_origins",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"blacklist.storage",
		"blacklist.key_prefix",
		"blacklist.cleanup_interval",
		"blacklist.auto_cleanup",
		"blacklist.max_entries",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	storage := strings.ToLower(strings.TrimSpace(cfg.Blacklist.Storage))
	if storage != StorageMemory && storage != StorageRedis {
		return nil, fmt.Errorf("unknown blacklist storage %q: expected %q or %q",
			cfg.Blacklist.Storage, StorageMemory, StorageRedis)
	}
	cfg.Blacklist.Storage = storage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "jwt-token-revoke")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.cors_allowed_origins", []string{})

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("blacklist.storage", StorageMemory)
	v.SetDefault("blacklist.key_prefix", "jwt_blacklist:")
	v.SetDefault("blacklist.cleanup_interval", "1h")
	v.SetDefault("blacklist.auto_cleanup", true)
	v.SetDefault("blacklist.max_entries", 0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "REVOKE_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
