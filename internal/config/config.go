package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Addr      string `env:"ADDR" envDefault:"127.0.0.1:8000"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"ws://127.0.0.1:8000"`
	StaticDir string `env:"STATIC_DIR"`

	TickInterval     time.Duration `env:"TICK_INTERVAL" envDefault:"33ms"`
	EventBuffer      int           `env:"EVENT_BUFFER" envDefault:"256"`
	SubscriberBuffer int           `env:"SUBSCRIBER_BUFFER" envDefault:"256"`

	WriteWait time.Duration `env:"WRITE_WAIT" envDefault:"10s"`
	PongWait  time.Duration `env:"PONG_WAIT" envDefault:"60s"`
}

// Load parses the environment into a validated Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR is required"))
	}
	if !strings.HasPrefix(c.PublicURL, "ws://") && !strings.HasPrefix(c.PublicURL, "wss://") {
		errs = append(errs, fmt.Errorf("PUBLIC_URL %q must use ws:// or wss://", c.PublicURL))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("TICK_INTERVAL must be positive"))
	}
	if c.EventBuffer <= 0 || c.SubscriberBuffer <= 0 {
		errs = append(errs, errors.New("EVENT_BUFFER and SUBSCRIBER_BUFFER must be positive"))
	}
	if c.WriteWait <= 0 || c.PongWait <= 0 {
		errs = append(errs, errors.New("WRITE_WAIT and PONG_WAIT must be positive"))
	}
	return errors.Join(errs...)
}

// PingPeriod is how often the server pings a client; it must be shorter
// than PongWait.
func (c Config) PingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}
