// Copyright 2025 Arion Yau
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
	"time"

	"gopkg.in/yaml.v3"
	"zapper/internal/samsung"
	"zapper/internal/wol"
)

// Placeholder values written by config generate, replaced during setup
const (
	PlaceholderHost = "tv_address_here"
	PlaceholderMAC  = "tv_mac_here"
)

// DefaultPath is where the configuration lives unless --config says otherwise
const DefaultPath = "zapper.yml"

// Config represents the full tool configuration
type Config struct {
	TV        TVConfig       `yaml:"tv"`
	Cast      CastConfig     `yaml:"cast"`
	Positions map[string]int `yaml:"positions,omitempty"`
	Bridge    BridgeConfig   `yaml:"bridge"`
}

// TVConfig contains the Samsung TV connection settings
type TVConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	MAC                 string `yaml:"mac"`
	Name                string `yaml:"name"` // client name announced to the TV
	TokenFile           string `yaml:"token_file"`
	HandshakeTimeoutSec int    `yaml:"handshake_timeout_sec"`
	KeyDelayMS          int    `yaml:"key_delay_ms"`
	VerifyTLS           bool   `yaml:"verify_tls"` // TVs ship self-signed certs, so off by default
}

// CastConfig contains media renderer settings
type CastConfig struct {
	Renderer           string `yaml:"renderer"` // preferred renderer name, empty for first found
	DiscoverTimeoutSec int    `yaml:"discover_timeout_sec"`
}

// BridgeConfig contains the local HTTP bridge settings
type BridgeConfig struct {
	Listen   string           `yaml:"listen"`
	Database string           `yaml:"database"`
	Auth     BridgeAuthConfig `yaml:"auth"`
}

// BridgeAuthConfig contains bridge authentication settings
type BridgeAuthConfig struct {
	PasswordHash   string `yaml:"password_hash"` // argon2id hash, empty disables login
	JWTSecret      string `yaml:"jwt_secret"`
	JWTIssuer      string `yaml:"jwt_issuer"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	return &Config{
		TV: TVConfig{
			Host:                PlaceholderHost,
			Port:                samsung.DefaultPort,
			MAC:                 PlaceholderMAC,
			Name:                samsung.DefaultName,
			TokenFile:           ".samsung_token",
			HandshakeTimeoutSec: 12,
			KeyDelayMS:          300,
		},
		Cast: CastConfig{
			DiscoverTimeoutSec: 3,
		},
		Bridge: BridgeConfig{
			Listen:   "127.0.0.1:8080",
			Database: "zapper.db",
			Auth: BridgeAuthConfig{
				JWTIssuer:      "zapper-bridge",
				JWTExpiryHours: 24,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file. Fields absent from the
// file keep their defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is structurally valid. Placeholder
// host and MAC values pass here; commands that need a real TV check
// HasValidTV and HasValidMAC themselves.
func (c *Config) Validate() error {
	if c.TV.Port <= 0 || c.TV.Port > 65535 {
		return fmt.Errorf("tv.port must be between 1 and 65535")
	}
	if c.TV.HandshakeTimeoutSec <= 0 {
		return fmt.Errorf("tv.handshake_timeout_sec must be positive")
	}
	if c.TV.KeyDelayMS < 0 {
		return fmt.Errorf("tv.key_delay_ms must not be negative")
	}
	if c.HasValidMAC() {
		if _, err := wol.ParseMAC(c.TV.MAC); err != nil {
			return fmt.Errorf("tv.mac is not a valid MAC address: %w", err)
		}
	}

	if c.Cast.DiscoverTimeoutSec <= 0 {
		return fmt.Errorf("cast.discover_timeout_sec must be positive")
	}

	for app, position := range c.Positions {
		if position < 0 {
			return fmt.Errorf("positions.%s must not be negative", app)
		}
	}

	if c.Bridge.Listen == "" {
		return fmt.Errorf("bridge.listen is required")
	}
	if c.Bridge.Database == "" {
		return fmt.Errorf("bridge.database is required")
	}
	if c.Bridge.Auth.JWTExpiryHours <= 0 {
		return fmt.Errorf("bridge.auth.jwt_expiry_hours must be positive")
	}

	return nil
}

// HasValidTV returns true if a real TV address has been configured
func (c *Config) HasValidTV() bool {
	return c.TV.Host != "" && c.TV.Host != PlaceholderHost
}

// HasValidMAC returns true if a real MAC address has been configured
func (c *Config) HasValidMAC() bool {
	return c.TV.MAC != "" && c.TV.MAC != PlaceholderMAC
}

// ClientConfig converts the TV section into a remote client configuration
func (t TVConfig) ClientConfig() samsung.ClientConfig {
	return samsung.ClientConfig{
		Host:             t.Host,
		Port:             t.Port,
		Name:             t.Name,
		TokenPath:        t.TokenFile,
		HandshakeTimeout: time.Duration(t.HandshakeTimeoutSec) * time.Second,
		KeyDelay:         time.Duration(t.KeyDelayMS) * time.Millisecond,
		VerifyTLS:        t.VerifyTLS,
	}
}

// DiscoverTimeout returns the cast discovery timeout as a duration
func (c CastConfig) DiscoverTimeout() time.Duration {
	return time.Duration(c.DiscoverTimeoutSec) * time.Second
}

// JWTExpiry returns the configured token lifetime as a duration
func (a BridgeAuthConfig) JWTExpiry() time.Duration {
	return time.Duration(a.JWTExpiryHours) * time.Hour
}

// Save saves the configuration to a YAML file
func (c *Config) Save(filepath string) error {
	return SaveConfig(c, filepath)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filepath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrDefault loads the configuration if the file exists, otherwise
// returns defaults without creating the file
func LoadOrDefault(filepath string) (*Config, error) {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return NewDefaultConfig(), nil
	}
	return LoadConfig(filepath)
}
