// Package config loads the sidecar's YAML configuration.
//
// A missing config file is not an error: every field has a default, and a
// handful of environment variables override the file for containerized
// deployments.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvPort     = "CREDITSD_PORT"
	EnvDataDir  = "CREDITSD_DATA_DIR"
	EnvLogLevel = "CREDITSD_LOG_LEVEL"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s"
// (or bare integers, read as nanoseconds).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if parsed, err := time.ParseDuration(value.Value); err == nil {
		*d = Duration(parsed)
		return nil
	}
	ns, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(ns)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// ProbeConfig holds hardware probing settings.
type ProbeConfig struct {
	Timeout Duration `yaml:"timeout"`
	// Disabled skips external commands entirely and reports defaults.
	Disabled bool `yaml:"disabled"`
}

// LedgerConfig holds credit accounting settings.
type LedgerConfig struct {
	DefaultInitial float64  `yaml:"default_initial"`
	SaveInterval   Duration `yaml:"save_interval"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	DataDir  string       `yaml:"data_dir"`
	Probe    ProbeConfig  `yaml:"probe"`
	Ledger   LedgerConfig `yaml:"ledger"`
	LogLevel string       `yaml:"log_level"`
}

// Load reads the config file at path. An absent file yields pure defaults;
// a present but malformed file is an error (a half-read config is worse
// than none).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML config data.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(DefaultProbeTimeout)
	}
	if c.Ledger.DefaultInitial == 0 {
		c.Ledger.DefaultInitial = DefaultInitialCredits
	}
	if c.Ledger.SaveInterval == 0 {
		c.Ledger.SaveInterval = Duration(DefaultSaveInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks configuration bounds.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Ledger.DefaultInitial < 0 {
		return fmt.Errorf("ledger.default_initial must be >= 0, got %f", c.Ledger.DefaultInitial)
	}
	if c.Probe.Timeout < 0 {
		return fmt.Errorf("probe.timeout must be >= 0, got %s", c.Probe.Timeout.Std())
	}
	return nil
}
