// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package config loads the ground-station YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Ground GroundConfig `yaml:"ground"`
}

type GroundConfig struct {
	Link    LinkConfig    `yaml:"link"`
	TCP     TCPConfig     `yaml:"tcp"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ---- LINK ----

type LinkConfig struct {
	Port string `yaml:"port"` // serial device
	Baud int    `yaml:"baud"`
	URL  string `yaml:"url"` // serial-over-WebSocket bridge
}

// ---- OPERATOR TCP ----

type TCPConfig struct {
	Port       int `yaml:"port"`
	MaxClients int `yaml:"max_clients"`
}

// ---- METRICS ----

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	Normalize(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied and no
// link selected.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}
