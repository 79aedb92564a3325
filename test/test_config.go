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

package test

import (
	"time"

	"pollStore/pkg/config"
)

// NewTestConfig creates a configuration for a server on a random loopback
// port storing records under dataDir. opts customize it further.
func NewTestConfig(dataDir string, opts ...func(*config.Config)) *config.Config {
	cfg := config.DefaultConfig()

	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.DataDir = dataDir

	// Monitoring stays off to avoid port conflicts
	cfg.Server.Monitoring.EnablePrometheus = false

	cfg.Server.Log.Level = "warn"
	cfg.Server.Log.Encoding = "console"
	cfg.Server.Log.OutputPaths = []string{"stdout"}

	cfg.Server.Reliability.ShutdownTimeout = 5 * time.Second

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithStrictWrites toggles strict durability
func WithStrictWrites(strict bool) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.Server.Persistence.StrictWrites = strict
	}
}

// WithLimits sets the message size and per-connection rate limit
func WithLimits(maxMessageSize int, qps float64, burst int) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.Server.Limits.MaxMessageSize = maxMessageSize
		cfg.Server.Limits.RateLimitQPS = qps
		cfg.Server.Limits.RateLimitBurst = burst
	}
}
