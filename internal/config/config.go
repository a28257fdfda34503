package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`

	ReadLimit  int64 `mapstructure:"read_limit"`
	SendBuffer int   `mapstructure:"send_buffer"`

	HeartbeatThreshold time.Duration `mapstructure:"heartbeat_threshold"`
	ReapPeriod         time.Duration `mapstructure:"reap_period"`

	EventRateLimit  int           `mapstructure:"event_rate_limit"`
	EventRateWindow time.Duration `mapstructure:"event_rate_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("heartbeat_threshold", "5m")
	v.SetDefault("reap_period", "5m")
	v.SetDefault("event_rate_limit", 30)
	v.SetDefault("event_rate_window", "10s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Secret == "" {
		// An empty HMAC secret would verify any forged token.
		return nil, errors.New("secret must be set")
	}
	return &cfg, nil
}
