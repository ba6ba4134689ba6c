// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package config

import "fmt"

// Validate rejects configurations that cannot be started.
func Validate(cfg *Config) error {
	l := cfg.Ground.Link

	if l.Port == "" && l.URL == "" {
		return fmt.Errorf("link: either a serial port or a bridge url is required")
	}
	if l.Port != "" && l.URL != "" {
		return fmt.Errorf("link: serial port and bridge url are mutually exclusive")
	}
	if l.Baud <= 0 {
		return fmt.Errorf("link: baud must be positive, got %d", l.Baud)
	}

	if cfg.Ground.TCP.Port < 1 || cfg.Ground.TCP.Port > 65535 {
		return fmt.Errorf("tcp: port %d out of range", cfg.Ground.TCP.Port)
	}
	if cfg.Ground.TCP.MaxClients < 1 {
		return fmt.Errorf("tcp: max_clients must be at least 1, got %d", cfg.Ground.TCP.MaxClients)
	}

	return nil
}
