package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RoberaET/overtime-clock/internal/limits"
)

// Config represents the overall application configuration.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Tick        TickConfig         `yaml:"tick"`
	Limits      limits.Caps        `yaml:"limits"`
	Multipliers map[string]float64 `yaml:"multipliers"`
	Database    DatabaseConfig     `yaml:"database"`
	Push        PushConfig         `yaml:"push"`
	WorkerPool  WorkerPoolConfig   `yaml:"worker_pool"`
	LogLevel    string             `yaml:"log_level"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// TickConfig holds the heartbeat configuration. The statutory behavior is a
// one second heartbeat; anything else is for load experiments only.
type TickConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications. Web push is
// optional: with empty keys the worker pool is not started.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// DatabaseConfig holds the archive database configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// WorkerPoolConfig holds the configuration for the push worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path and applies defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values with the statutory and operational
// defaults. Exported so tests can build configs without a YAML file.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Tick.IntervalSeconds <= 0 {
		cfg.Tick.IntervalSeconds = 1
	}
	cfg.Tick.Interval = time.Duration(cfg.Tick.IntervalSeconds) * time.Second

	def := limits.DefaultCaps()
	if cfg.Limits.DailyHours <= 0 {
		cfg.Limits.DailyHours = def.DailyHours
	}
	if cfg.Limits.WeeklyHours <= 0 {
		cfg.Limits.WeeklyHours = def.WeeklyHours
	}
	if cfg.Limits.YearlyHours <= 0 {
		cfg.Limits.YearlyHours = def.YearlyHours
	}
	if cfg.Limits.SustainableHours <= 0 {
		cfg.Limits.SustainableHours = def.SustainableHours
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "overtime.db"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
