package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	JWTSecret      string        `yaml:"jwt_secret"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	PoolSize int    `yaml:"pool_size"`
	// LockTimeout bounds how long an admission waits on a row lock before the
	// caller gets a retryable conflict instead of hanging.
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SchedulerConfig struct {
	ExpiryCheckInterval time.Duration `yaml:"expiry_check_interval"`
}

type BookingConfig struct {
	// PendingReuseWindow is how far back Enroll looks for a pending enrollment
	// to overwrite instead of creating a duplicate row.
	PendingReuseWindow time.Duration `yaml:"pending_reuse_window"`
	NotifyWorkers      int           `yaml:"notify_workers"`
	RatePerMinute      int           `yaml:"rate_per_minute"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Mail      MailConfig      `yaml:"mail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Booking   BookingConfig   `yaml:"booking"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.PoolSize <= 0 {
		cfg.Database.PoolSize = 10
	}
	if cfg.Database.LockTimeout <= 0 {
		cfg.Database.LockTimeout = 3 * time.Second
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Scheduler.ExpiryCheckInterval <= 0 {
		cfg.Scheduler.ExpiryCheckInterval = time.Hour
	}
	if cfg.Booking.PendingReuseWindow <= 0 {
		cfg.Booking.PendingReuseWindow = 30 * 24 * time.Hour
	}
	if cfg.Booking.NotifyWorkers <= 0 {
		cfg.Booking.NotifyWorkers = 4
	}
	if cfg.Booking.RatePerMinute <= 0 {
		cfg.Booking.RatePerMinute = 30
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.HTTP.JWTSecret == "" && !dev {
		return nil, errors.New("http.jwt_secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
