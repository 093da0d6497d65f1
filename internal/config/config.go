package config

import "time"

// SyncConfig is the root configuration for a sync daemon instance.
type SyncConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Platform PlatformConfig `yaml:"platform"`
	Database DBConfig       `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this daemon.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// PlatformConfig holds remote payout platform settings.
type PlatformConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"` // total tries under rate limiting
	BaseBackoff time.Duration `yaml:"base_backoff"` // first 429 backoff, doubles per attempt
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds poll loop settings.
type PollerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	StopGrace time.Duration `yaml:"stop_grace"` // drain window for in-flight orders
}

// FetchConfig holds paginated fetch settings.
type FetchConfig struct {
	DefaultPages int           `yaml:"default_pages"`
	PageDelay    time.Duration `yaml:"page_delay"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
