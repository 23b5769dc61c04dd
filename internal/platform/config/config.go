package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Meeting   MeetingConfig   `mapstructure:"meeting"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type RateLimitConfig struct {
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
	MessagesPerMinute int `mapstructure:"messages_per_minute"`
}

type BookingConfig struct {
	DefaultDurationMinutes int           `mapstructure:"default_duration_minutes"`
	PendingTTL             time.Duration `mapstructure:"pending_ttl"`
}

type MessagingConfig struct {
	PerPartyCap int `mapstructure:"per_party_cap"`
}

type BillingConfig struct {
	CheckoutBaseURL string   `mapstructure:"checkout_base_url"`
	TestDomains     []string `mapstructure:"test_domains"`
}

type MeetingConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type WebhooksConfig struct {
	WorkerCount   int           `mapstructure:"worker_count"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

type RealtimeConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
