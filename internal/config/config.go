// Package config provides the configuration of the evtimer demo command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the demo configuration.
type Config struct {
	Backend        string        `yaml:"backend"`          // epoll or heap, empty for the platform default
	EventBatchSize int           `yaml:"event_batch_size"` // events fetched by one epoll_wait
	Interval       Timer         `yaml:"interval"`         // periodic timer added by the first goroutine
	Oneshot        Timer         `yaml:"oneshot"`          // one-shot timer added by the second goroutine
	Duration       time.Duration `yaml:"duration"`         // how long the loop runs before Stop
	LogLevel       string        `yaml:"log_level"`        // DEBUG, INFO, WARN or ERROR
	LogDir         string        `yaml:"log_dir"`          // daily log files go here, stdout if empty
	DevLog         bool          `yaml:"dev_log"`          // developer friendly console output
	MetricsAddr    string        `yaml:"metrics_addr"`     // serve /metrics on this address if set
}

// Timer describes one timer of the demo, in milliseconds.
type Timer struct {
	Delay    int64 `yaml:"delay_ms"`
	Interval int64 `yaml:"interval_ms"`
}

// NewConfig returns a Config populated with default values: an interval
// timer every second and a one-shot after three seconds, stopped after five.
func NewConfig() Config {
	return Config{
		EventBatchSize: 10,
		Interval:       Timer{Delay: 1000, Interval: 1000},
		Oneshot:        Timer{Delay: 3000},
		Duration:       5 * time.Second,
		LogLevel:       "INFO",
	}
}

// Load reads the configuration from path into c. A missing file leaves c
// untouched.
func (c *Config) Load(path string) error {
	file, err := os.Open(path) //nolint
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse yaml config: %w", err)
	}

	return c.Validate()
}

// Validate checks values the timer manager would reject anyway, so the
// error points at the config key.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", "epoll", "heap":
	default:
		return fmt.Errorf("backend: unknown value %q", c.Backend)
	}
	if c.Interval.Interval <= 0 {
		return errors.New("interval.interval_ms must be > 0")
	}
	if c.Interval.Delay < 0 || c.Oneshot.Delay < 0 {
		return errors.New("delay_ms must be >= 0")
	}
	if c.Duration <= 0 {
		return errors.New("duration must be > 0")
	}
	return nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
