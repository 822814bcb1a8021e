// Package config loads helpr configuration.
//
// Configuration comes from an optional YAML file named by --config or
// HELPR_CONFIG. There is no discovery: without a file, defaults apply. A small
// set of environment variables override file values so scripts can point a
// client at a different service without writing a file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"helpr/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration for both the service and its clients.
type Config struct {
	// Server configures `helpr serve`.
	Server ServerConfig `yaml:"server"`

	// Client configures every command that talks to the service.
	Client ClientConfig `yaml:"client"`

	// Log configures service logging.
	Log LogConfig `yaml:"log"`
}

type ServerConfig struct {
	// Addr is the listen address.
	// Default: 127.0.0.1:8080
	Addr string `yaml:"addr"`

	// AdminZID is the only identity allowed to end the session.
	// Default: admin
	AdminZID string `yaml:"admin_zid"`
}

type ClientConfig struct {
	// BaseURL is the queue service root.
	// Default: http://127.0.0.1:8080
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every fetch and dispatch.
	// Default: 5s
	Timeout string `yaml:"timeout"`

	// PollInterval is how often the TUI re-fetches without a change notification.
	// Default: 3s
	PollInterval string `yaml:"poll_interval"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			AdminZID: model.DefaultAdminZID,
		},
		Client: ClientConfig{
			BaseURL:      "http://127.0.0.1:8080",
			Timeout:      "5s",
			PollInterval: "3s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("HELPR_SERVER")); v != "" {
		c.Client.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("HELPR_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv("HELPR_ADMIN")); v != "" {
		c.Server.AdminZID = v
	}
	if v := strings.TrimSpace(getenv("HELPR_TIMEOUT")); v != "" {
		c.Client.Timeout = v
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is empty")
	}
	if strings.TrimSpace(c.Server.AdminZID) == "" {
		return errors.New("config: server.admin_zid is empty")
	}
	if strings.TrimSpace(c.Client.BaseURL) == "" {
		return errors.New("config: client.base_url is empty")
	}
	if _, err := c.ClientTimeout(); err != nil {
		return err
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: invalid log.format %q (expected text|json)", c.Log.Format)
	}
	return nil
}

func (c *Config) ClientTimeout() (time.Duration, error) {
	return parsePositiveDuration("client.timeout", c.Client.Timeout)
}

func (c *Config) PollInterval() (time.Duration, error) {
	return parsePositiveDuration("client.poll_interval", c.Client.PollInterval)
}

func parsePositiveDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", field)
	}
	return d, nil
}
