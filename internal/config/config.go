// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"distconv/core/input"
	"distconv/core/output"
	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Input controls how entered values are parsed
	Input InputConfig `json:"input"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP API configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// InputConfig contains input-parsing settings
type InputConfig struct {
	// OnInvalid is "reject" or "zero"
	OnInvalid input.Policy `json:"on_invalid"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// Color enables ANSI colors in terminal output
	Color bool `json:"color"`

	// Exact shows decimal results instead of rounded floats
	Exact bool `json:"exact"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`

	// RateLimit throttles clients
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Stats stores rate-limit decisions
	Stats StatsConfig `json:"stats"`
}

// RateLimitConfig contains per-client token bucket settings
type RateLimitConfig struct {
	// Enabled turns limiting on
	Enabled bool `json:"enabled"`

	// RPS is the sustained requests per second per client
	RPS float64 `json:"rps"`

	// Burst is the bucket size
	Burst int `json:"burst"`

	// TrustXForwardedFor keys clients by X-Forwarded-For
	TrustXForwardedFor bool `json:"trust_x_forwarded_for"`
}

// StatsConfig selects the stats backend
type StatsConfig struct {
	// Backend is "none", "memory" or "redis"
	Backend string `json:"backend"`

	// RedisAddr is host:port of the Redis server
	RedisAddr string `json:"redis_addr,omitempty"`

	// Prefix namespaces Redis keys
	Prefix string `json:"prefix,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Input: InputConfig{
			OnInvalid: input.PolicyReject,
		},
		Output: OutputConfig{
			DefaultFormat: string(output.FormatCLI),
			Color:         true,
			Exact:         false,
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
			Stats: StatsConfig{
				Backend: "memory",
				Prefix:  "distconv:stats",
			},
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.distconv.json
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".distconv.json"
	}
	return filepath.Join(home, ".distconv.json")
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, apperrors.Wrapf(apperrors.TypeConfig, err, "failed to read %s", path)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, apperrors.Wrapf(apperrors.TypeConfig, err, "failed to parse %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if _, err := input.ParsePolicy(string(c.Input.OnInvalid)); err != nil {
		return err
	}
	if _, err := output.DefaultRegistry().Get(c.Output.DefaultFormat); err != nil {
		return apperrors.Wrap(apperrors.TypeConfig, "invalid output.default_format", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return apperrors.Wrap(apperrors.TypeConfig, "invalid logging", err)
	}

	rl := c.Server.RateLimit
	if rl.Enabled && (rl.RPS <= 0 || rl.Burst <= 0) {
		return apperrors.Config("server.rate_limit: rps and burst must be positive when enabled")
	}

	switch c.Server.Stats.Backend {
	case "", "none", "memory":
	case "redis":
		if c.Server.Stats.RedisAddr == "" {
			return apperrors.Config("server.stats: redis backend requires redis_addr")
		}
	default:
		return apperrors.Newf(apperrors.TypeConfig, "server.stats: unknown backend %q", c.Server.Stats.Backend)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
