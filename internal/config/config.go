package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source   string        `yaml:"source"`
	Partials string        `yaml:"partials"`
	Output   string        `yaml:"output"`
	Site     SiteConfig    `yaml:"site"`
	Git      *GitConfig    `yaml:"git,omitempty"`
	Serve    ServeConfig   `yaml:"serve"`
	History  HistoryConfig `yaml:"history"`
	Events   EventsConfig  `yaml:"events"`
}

// SiteConfig carries site-wide metadata used by init scaffolding and the preview server.
type SiteConfig struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// GitConfig describes an optional remote source repository. When set, the
// source tree is cloned from URL before building instead of read from Source.
type GitConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
}

// ServeConfig controls the local preview server started by the serve command.
type ServeConfig struct {
	Port            int           `yaml:"port"`
	LiveReload      bool          `yaml:"live_reload"`
	Metrics         MetricsConfig `yaml:"metrics"`
	RebuildInterval string        `yaml:"rebuild_interval,omitempty"` // Go duration string, e.g. "5m"
}

// RebuildIntervalDuration returns the parsed rebuild interval, or zero when unset.
func (s ServeConfig) RebuildIntervalDuration() time.Duration {
	if s.RebuildInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil {
		return 0
	}
	return d
}

// MetricsConfig enables the Prometheus endpoint on the preview server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// HistoryConfig controls the SQLite build history store.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// EventsConfig controls optional NATS build event publishing.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; existing environment wins.
	if err := loadEnvFile(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with all defaults applied and no file read.
// Used by commands that can run without a config file on disk.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "./src"
	}
	if c.Partials == "" {
		c.Partials = "./partials"
	}
	if c.Output == "" {
		c.Output = "./public"
	}
	if c.Site.Title == "" {
		c.Site.Title = "My Site"
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 8080
	}
	if c.Serve.Metrics.Path == "" {
		c.Serve.Metrics.Path = "/metrics"
	}
	if c.History.Path == "" {
		c.History.Path = ".sitebuilder/history.db"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "sitebuilder.builds"
	}
	if c.Git != nil && c.Git.Branch == "" {
		c.Git.Branch = "main"
	}
}

// Validate checks cross-field constraints that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("invalid serve port: %d", c.Serve.Port)
	}
	if c.Serve.RebuildInterval != "" {
		d, err := time.ParseDuration(c.Serve.RebuildInterval)
		if err != nil {
			return fmt.Errorf("invalid rebuild_interval %q: %w", c.Serve.RebuildInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("rebuild_interval must not be negative")
		}
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events are enabled")
	}
	if c.Git != nil && c.Git.URL == "" {
		return fmt.Errorf("git.url is required when a git section is present")
	}
	return nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully parsed file. Existing process environment is not overwritten.
func loadEnvFile() error {
	envPaths := []string{".env", ".env.local"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no .env file found")
}
