// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package config

// Defaults
const (
	DefaultBaud       = 115200
	DefaultTCPPort    = 4444
	DefaultMaxClients = 10
)

// Normalize fills defaults for every unset field.
func Normalize(cfg *Config) {
	if cfg.Ground.Link.Baud == 0 {
		cfg.Ground.Link.Baud = DefaultBaud
	}
	if cfg.Ground.TCP.Port == 0 {
		cfg.Ground.TCP.Port = DefaultTCPPort
	}
	if cfg.Ground.TCP.MaxClients == 0 {
		cfg.Ground.TCP.MaxClients = DefaultMaxClients
	}
}
