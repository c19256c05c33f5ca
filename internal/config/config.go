// Package config loads the YAML configuration shared by the acp-agent and
// acp-client demo binaries: transport selection, handshake timeout, and
// log level.
//
// Grounded on yunhoi129-moai-adk's internal/config/loader.go (gopkg.in/yaml.v3,
// defaults-then-overlay, missing file is not an error), simplified from
// that package's multi-section-file layout to one flat document since our
// config surface is much smaller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport selects the duplex byte pair an acp-agent/acp-client binary
// connects over.
type Transport string

// Valid Transport values.
const (
	TransportStdio Transport = "stdio"
	TransportWS    Transport = "websocket"
)

// Config is the on-disk shape of an acp-agent/acp-client config file.
type Config struct {
	Transport        Transport     `yaml:"transport"`
	ListenAddr       string        `yaml:"listenAddr,omitempty"`
	WebSocketURL     string        `yaml:"webSocketUrl,omitempty"`
	Binary           string        `yaml:"binary,omitempty"`
	Args             []string      `yaml:"args,omitempty"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout,omitempty"`
	LogLevel         string        `yaml:"logLevel,omitempty"`
}

// Default returns a Config with every field set to its zero-risk default:
// stdio transport, a 10s handshake timeout, info-level logging.
func Default() *Config {
	return &Config{
		Transport:        TransportStdio,
		HandshakeTimeout: 10 * time.Second,
		LogLevel:         "info",
	}
}

// Load reads path as YAML into a Default() config, leaving every field the
// file doesn't set at its default. A missing file is not an error — it
// just means "use the defaults".
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
