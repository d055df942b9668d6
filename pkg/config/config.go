// Package config loads the gateway's YAML configuration file, mirroring
// the teacher's provider_yaml.go approach: unmarshal into a nested struct,
// then apply defaults and validation.
package config

import (
	"fmt"
	"os"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"gopkg.in/yaml.v2"
)

// AprsConfig configures the APRS-IS login and upstream server.
type AprsConfig struct {
	Callsign string `yaml:"callsign"`
	Password string `yaml:"password"`
	Filter   string `yaml:"filter"`
	Server   string `yaml:"server"`
}

// ConnectionStringsConfig configures the store and dedup cache backends.
type ConnectionStringsConfig struct {
	Database string `yaml:"database"`
	Cache    string `yaml:"cache"`
}

// APIConfig configures the read API / real-time fan-out HTTP server.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// IngestConfig configures the ingestion pipeline's worker pool and queue.
type IngestConfig struct {
	Workers       int `yaml:"workers"`
	QueueCapacity int `yaml:"queueCapacity"`
}

// Config is the complete, validated gateway configuration.
type Config struct {
	Aprs              AprsConfig              `yaml:"aprs"`
	ConnectionStrings ConnectionStringsConfig `yaml:"connectionStrings"`
	API               APIConfig               `yaml:"api"`
	Ingest            IngestConfig            `yaml:"ingest"`
}

const (
	defaultCallsign      = "N0CALL"
	defaultPassword      = "-1"
	defaultFilter        = "r/52/21/500"
	defaultServer        = "rotate.aprs2.net:14580"
	defaultListenAddr    = ":8080"
	defaultWorkers       = 4
	defaultQueueCapacity = 10000
)

// Load reads and parses the YAML configuration file at path, applies
// defaults for any unset field, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperr.Internal("failed to parse config file", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Aprs.Callsign == "" {
		c.Aprs.Callsign = defaultCallsign
	}
	if c.Aprs.Password == "" {
		c.Aprs.Password = defaultPassword
	}
	if c.Aprs.Filter == "" {
		c.Aprs.Filter = defaultFilter
	}
	if c.Aprs.Server == "" {
		c.Aprs.Server = defaultServer
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = defaultListenAddr
	}
	if c.Ingest.Workers == 0 {
		c.Ingest.Workers = defaultWorkers
	}
	if c.Ingest.QueueCapacity == 0 {
		c.Ingest.QueueCapacity = defaultQueueCapacity
	}
}

// IsDefaultCallsign reports whether the APRS-IS login still uses the
// unregistered default callsign.
func (c *Config) IsDefaultCallsign() bool { return c.Aprs.Callsign == defaultCallsign }

// Validate rejects a configuration that cannot run: an empty database
// connection string is the only condition this gateway cannot recover
// from at startup.
func (c *Config) Validate() error {
	if c.ConnectionStrings.Database == "" {
		return apperr.Validation("connectionStrings.database", "must not be empty")
	}
	return nil
}
