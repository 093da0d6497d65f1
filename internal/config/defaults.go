package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPlatformTimeout = 30 * time.Second
	DefaultMaxAttempts     = 5
	DefaultBaseBackoff     = 1000 * time.Millisecond
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultPollInterval    = 10 * time.Second
	DefaultStopGrace       = 30 * time.Second
	DefaultPages           = 10
	DefaultPageDelay       = 1000 * time.Millisecond
	DefaultHealthPort      = 8080
	DefaultHealthPath      = "/health"
)

func (c *SyncConfig) applyDefaults() {
	// Platform defaults
	if c.Platform.Timeout == 0 {
		c.Platform.Timeout = DefaultPlatformTimeout
	}
	if c.Platform.MaxAttempts == 0 {
		c.Platform.MaxAttempts = DefaultMaxAttempts
	}
	if c.Platform.BaseBackoff == 0 {
		c.Platform.BaseBackoff = DefaultBaseBackoff
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.StopGrace == 0 {
		c.Poller.StopGrace = DefaultStopGrace
	}

	// Fetch defaults
	if c.Fetch.DefaultPages == 0 {
		c.Fetch.DefaultPages = DefaultPages
	}
	if c.Fetch.PageDelay == 0 {
		c.Fetch.PageDelay = DefaultPageDelay
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}
