// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func serialConfig() *Config {
	cfg := Default()
	cfg.Ground.Link.Port = "/dev/ttyUSB0"
	return cfg
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{}
	Normalize(cfg)

	if cfg.Ground.Link.Baud != 115200 {
		t.Errorf("Baud default = %d, want 115200", cfg.Ground.Link.Baud)
	}
	if cfg.Ground.TCP.Port != 4444 {
		t.Errorf("TCP port default = %d, want 4444", cfg.Ground.TCP.Port)
	}
	if cfg.Ground.TCP.MaxClients != 10 {
		t.Errorf("MaxClients default = %d, want 10", cfg.Ground.TCP.MaxClients)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid serial", func(c *Config) {}, false},
		{"valid websocket", func(c *Config) {
			c.Ground.Link.Port = ""
			c.Ground.Link.URL = "ws://bridge:8080/uart"
		}, false},
		{"no link", func(c *Config) { c.Ground.Link.Port = "" }, true},
		{"both links", func(c *Config) { c.Ground.Link.URL = "ws://x" }, true},
		{"bad baud", func(c *Config) { c.Ground.Link.Baud = -9600 }, true},
		{"bad tcp port", func(c *Config) { c.Ground.TCP.Port = 70000 }, true},
		{"negative max clients", func(c *Config) { c.Ground.TCP.MaxClients = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := serialConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ground.yaml")

	data := `ground:
  link:
    port: /dev/ttyACM1
    baud: 57600
  tcp:
    port: 5555
  metrics:
    addr: ":9100"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ground.Link.Port != "/dev/ttyACM1" {
		t.Errorf("Port = %q", cfg.Ground.Link.Port)
	}
	if cfg.Ground.Link.Baud != 57600 {
		t.Errorf("Baud = %d", cfg.Ground.Link.Baud)
	}
	if cfg.Ground.TCP.Port != 5555 {
		t.Errorf("TCP port = %d", cfg.Ground.TCP.Port)
	}
	// Unset fields pick up defaults.
	if cfg.Ground.TCP.MaxClients != 10 {
		t.Errorf("MaxClients = %d, want default 10", cfg.Ground.TCP.MaxClients)
	}
	if cfg.Ground.Metrics.Addr != ":9100" {
		t.Errorf("Metrics addr = %q", cfg.Ground.Metrics.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/ground.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}
