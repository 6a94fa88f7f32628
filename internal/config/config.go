// Package config loads kvkv's optional YAML config file and layers it
// under CLI flags: a file supplies base values, and flags that were
// explicitly set on the command line override them.
package config

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs the master/replica servers take: one
// struct, loaded once at startup and threaded through as a value, never
// read from a global.
type Config struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	Host             string   `yaml:"host" mapstructure:"host"`
	ReplicaAddresses []string `yaml:"replica_addresses" mapstructure:"replica_addresses"`
	LogLevel         string   `yaml:"log_level" mapstructure:"log_level"`

	// PhaseTimeoutMS bounds each 2PC phase (vote collection, decision
	// broadcast) per replica, so a hung replica cannot block the cluster
	// forever.
	PhaseTimeoutMS int `yaml:"phase_timeout_ms" mapstructure:"phase_timeout_ms"`

	// ReconnectIntervalMS is how long a master waits between failed
	// connect attempts to a replica.
	ReconnectIntervalMS int `yaml:"reconnect_interval_ms" mapstructure:"reconnect_interval_ms"`
}

func Default() Config {
	return Config{
		Port:                6399,
		Host:                "127.0.0.1",
		LogLevel:            "info",
		PhaseTimeoutMS:      2000,
		ReconnectIntervalMS: 5000,
	}
}

// LoadFile reads a YAML file at path and decodes it over Default() via
// mapstructure, so unknown or partially-specified files fill in only the
// fields they mention.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: read file")
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrap(err, "config: parse yaml")
	}

	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	return cfg, nil
}
