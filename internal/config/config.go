package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port               int     `env:"PORT" envDefault:"8080"`
	DatabaseURL        string  `env:"DATABASE_URL,required"`
	RedisURL           string  `env:"REDIS_URL"`
	DataDir            string  `env:"DATA_DIR" envDefault:"./data"`
	DurableBackend     string  `env:"DURABLE_BACKEND" envDefault:"file"`
	SessionExpiryHours float64 `env:"SESSION_EXPIRY_HOURS" envDefault:"24"`
	FlushRetrySeconds  int     `env:"FLUSH_RETRY_SECONDS" envDefault:"30"`
	IntervalHours      float64 `env:"DEFAULT_INTERVAL_HOURS" envDefault:"3"`
	LogLevel           string  `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionExpiry() time.Duration {
	return time.Duration(c.SessionExpiryHours * float64(time.Hour))
}

func (c *Config) FlushRetryInterval() time.Duration {
	return time.Duration(c.FlushRetrySeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	switch c.DurableBackend {
	case "file":
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required when DURABLE_BACKEND=file")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when DURABLE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("DURABLE_BACKEND must be \"file\" or \"redis\", got %q", c.DurableBackend)
	}

	if c.SessionExpiryHours <= 0 {
		return fmt.Errorf("SESSION_EXPIRY_HOURS must be positive, got %v", c.SessionExpiryHours)
	}
	if c.IntervalHours < 0 {
		return fmt.Errorf("DEFAULT_INTERVAL_HOURS must not be negative, got %v", c.IntervalHours)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
