// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config unified configuration structure
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig server configuration
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"` // Default :9000
	DataDir       string `yaml:"data_dir"`       // Default data

	Limits      LimitsConfig      `yaml:"limits"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Reliability ReliabilityConfig `yaml:"reliability"`
	Log         LogConfig         `yaml:"log"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
}

// LimitsConfig protocol limits
type LimitsConfig struct {
	MaxMessageSize int     `yaml:"max_message_size"` // Bytes per request and response, default 1024
	RateLimitQPS   float64 `yaml:"rate_limit_qps"`   // Requests per second per connection, 0 disables
	RateLimitBurst int     `yaml:"rate_limit_burst"` // Token bucket size, default 1 when qps is set
}

// PersistenceConfig record writing
type PersistenceConfig struct {
	// StrictWrites fails the request when its record cannot be written and
	// leaves the in-memory item untouched. Default false: write failures are
	// logged and the request still succeeds.
	StrictWrites bool `yaml:"strict_writes"`
	Fsync        bool `yaml:"fsync"` // Default false
}

// ReliabilityConfig reliability configuration
type ReliabilityConfig struct {
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Default 30s
}

// LogConfig log configuration
type LogConfig struct {
	Level            string   `yaml:"level"`              // Default info
	Encoding         string   `yaml:"encoding"`           // Default console
	OutputPaths      []string `yaml:"output_paths"`       // Default ["stdout"]
	ErrorOutputPaths []string `yaml:"error_output_paths"` // Default ["stderr"]
	MaxSizeMB        int      `yaml:"max_size_mb"`        // Rotation size of file outputs, default 100
	MaxBackups       int      `yaml:"max_backups"`        // Default 10
	MaxAgeDays       int      `yaml:"max_age_days"`       // Default 7
	Compress         bool     `yaml:"compress"`
}

// MonitoringConfig monitoring configuration
type MonitoringConfig struct {
	EnablePrometheus  bool   `yaml:"enable_prometheus"`  // Default false
	PrometheusAddress string `yaml:"prometheus_address"` // Default :9090
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SetDefaults()
	cfg.OverrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigOrDefault loads path if it exists and falls back to defaults.
// Environment overrides apply in both cases.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadConfig(path)
		if err == nil {
			return cfg, nil
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	cfg.OverrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// SetDefaults sets default values
func (c *Config) SetDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":9000"
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = "data"
	}

	if c.Server.Limits.MaxMessageSize == 0 {
		c.Server.Limits.MaxMessageSize = 1024
	}
	if c.Server.Limits.RateLimitQPS > 0 && c.Server.Limits.RateLimitBurst == 0 {
		c.Server.Limits.RateLimitBurst = 1
	}

	if c.Server.Reliability.ShutdownTimeout == 0 {
		c.Server.Reliability.ShutdownTimeout = 30 * time.Second
	}

	if c.Server.Log.Level == "" {
		c.Server.Log.Level = "info"
	}
	if c.Server.Log.Encoding == "" {
		c.Server.Log.Encoding = "console"
	}
	if len(c.Server.Log.OutputPaths) == 0 {
		c.Server.Log.OutputPaths = []string{"stdout"}
	}
	if len(c.Server.Log.ErrorOutputPaths) == 0 {
		c.Server.Log.ErrorOutputPaths = []string{"stderr"}
	}
	if c.Server.Log.MaxSizeMB == 0 {
		c.Server.Log.MaxSizeMB = 100
	}
	if c.Server.Log.MaxBackups == 0 {
		c.Server.Log.MaxBackups = 10
	}
	if c.Server.Log.MaxAgeDays == 0 {
		c.Server.Log.MaxAgeDays = 7
	}

	if c.Server.Monitoring.PrometheusAddress == "" {
		c.Server.Monitoring.PrometheusAddress = ":9090"
	}
}

// OverrideFromEnv overrides configuration from environment variables
func (c *Config) OverrideFromEnv() {
	if addr := os.Getenv("POLLSTORE_LISTEN_ADDRESS"); addr != "" {
		c.Server.ListenAddress = addr
	}
	if dir := os.Getenv("POLLSTORE_DATA_DIR"); dir != "" {
		c.Server.DataDir = dir
	}
	if level := os.Getenv("POLLSTORE_LOG_LEVEL"); level != "" {
		c.Server.Log.Level = level
	}
	if encoding := os.Getenv("POLLSTORE_LOG_ENCODING"); encoding != "" {
		c.Server.Log.Encoding = encoding
	}
	if strict := os.Getenv("POLLSTORE_STRICT_WRITES"); strict != "" {
		if v, err := strconv.ParseBool(strict); err == nil {
			c.Server.Persistence.StrictWrites = v
		}
	}
	if addr := os.Getenv("POLLSTORE_PROMETHEUS_ADDRESS"); addr != "" {
		c.Server.Monitoring.EnablePrometheus = true
		c.Server.Monitoring.PrometheusAddress = addr
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	// a request must at least fit the longest command token
	if c.Server.Limits.MaxMessageSize < 64 {
		return fmt.Errorf("limits.max_message_size must be >= 64")
	}
	if c.Server.Limits.RateLimitQPS < 0 {
		return fmt.Errorf("limits.rate_limit_qps must be >= 0")
	}
	if c.Server.Limits.RateLimitBurst < 0 {
		return fmt.Errorf("limits.rate_limit_burst must be >= 0")
	}

	if c.Server.Reliability.ShutdownTimeout <= 0 {
		return fmt.Errorf("reliability.shutdown_timeout must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true,
		"error": true, "dpanic": true, "panic": true, "fatal": true,
	}
	if !validLogLevels[c.Server.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error, dpanic, panic, fatal")
	}
	if c.Server.Log.Encoding != "json" && c.Server.Log.Encoding != "console" {
		return fmt.Errorf("log.encoding must be either 'json' or 'console'")
	}

	if c.Server.Monitoring.EnablePrometheus && c.Server.Monitoring.PrometheusAddress == "" {
		return fmt.Errorf("monitoring.prometheus_address is required when prometheus is enabled")
	}
	return nil
}
