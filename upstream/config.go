// Copyright 2025 Poiesic Systems
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


package upstream

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the search service client.
type Config struct {
	// BaseURL is the root URL of the search service, without a trailing slash.
	// Example: "http://localhost:8000"
	BaseURL string

	// APIKey authenticates against the search service. When empty no
	// Authorization header is sent.
	APIKey string

	// Timeout bounds a single search round trip.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the search service root URL.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithAPIKey sets the search service API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config pointing at a local search service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8000",
		Timeout: defaultTimeout,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("upstream config: BaseURL is required")
	}
	return nil
}
